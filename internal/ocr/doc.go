// Package ocr extracts printed text from product images using Tesseract.
//
// The studio appends recognized text (brand names, labels) to description
// prompts as a hint for the vision model. OCR is optional: the Tesseract
// backend, built on gosseract/v2, is compiled in only with the "tesseract"
// build tag, because it links against the native Tesseract and Leptonica
// libraries:
//
//	go build -tags tesseract ./...
//
// Without the tag every Engine reports ErrUnavailable and callers carry on
// without hints.
//
// # Prerequisites
//
// With the tag, Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Language data is looked up in Engine.TessdataPrefix, or in Tesseract's
// default location when it is empty.
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes, such as "deu", "fra", "spa" or
// "chi_sim", provided their data files are installed.
package ocr
