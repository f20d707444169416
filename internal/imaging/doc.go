// Package imaging provides the raster side of logo vectorization.
//
// It decodes image payloads, prepares them for contour tracing, samples
// colors and re-encodes images for transport. All operations work with
// standard Go image.Image types and use a coordinate system where (0,0) is at
// the top-left corner, X increases rightward, and Y increases downward.
//
// # Payloads
//
// Decode and Info accept raw encoded bytes, bare base64 text or a data URL
// ("data:image/png;base64,..."). PNG, JPEG and GIF decoders come from the
// standard library; BMP, TIFF and WebP from golang.org/x/image. The image
// header is checked against a pixel limit before any pixel data is decoded.
//
// # Preprocessing
//
// Preprocess runs Grayscale, Contrast, Normalize and Posterize in that order
// and returns a new *image.Gray. Each step is exported so the order can be
// tested step by step.
//
// # Color Representation
//
// Colors are returned as lowercase "#rrggbb" hex strings and, through
// Summarize, in HSL: Hue (0-360), Saturation (0-100), Lightness (0-100).
//
// # Thread Safety
//
// Every function is stateless and can be called concurrently on different
// images. Normalize and Posterize modify their argument in place.
package imaging
