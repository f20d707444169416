// Package httpapi exposes the studio operations as a JSON HTTP API for the
// browser front end.
//
// Routes:
//
//	POST /api/convert-to-svg        {imageUrl, options} -> {svg}
//	POST /api/generate-logo         {prompt, model?} -> {imageUrl}
//	POST /api/generate-svg          {prompt, model?} -> {imageUrl}
//	POST /api/generate-description  {imageUrl, model?, languages, length?, format?} -> {descriptions}
//	GET  /healthz
//
// Failures answer {error, details}. Bad input is 400, an image with nothing
// to trace is 422, a missing API key is 503 and provider or fetch failures
// are 502.
package httpapi
