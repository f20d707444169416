// Package vectorize converts raster images into SVG outlines.
//
// A conversion runs four stages in a fixed order:
//
//  1. Decode: the payload is unwrapped (data URL, base64) and decoded by
//     package imaging.
//  2. Preprocess: grayscale, contrast, normalization and posterization, also
//     in package imaging.
//  3. Trace: the preprocessed image is binarized, its 8-connected foreground
//     regions are found and their pixel boundaries followed. Speckle regions
//     are dropped, the remaining boundaries simplified and fitted with
//     corners and cubic Béziers, and holes are nested under the outlines
//     that enclose them.
//  4. Serialize: every outline and its holes become one SVG path with the
//     even-odd fill rule.
//
// # Geometry
//
// Coordinates are in source pixels with (0,0) at the top-left corner of the
// top-left pixel and Y growing downward. Outlines wind clockwise and have
// positive area; holes wind counter-clockwise and have negative area.
//
// # Errors
//
// Each stage fails fast with a typed error: *DecodeError, *TraceError or
// *EmptyResultError. Use errors.As to tell them apart. Invalid options are
// reported before any decoding with an error wrapping ErrInvalidOptions.
//
// # Thread Safety
//
// Conversions share no state and may run concurrently.
package vectorize
