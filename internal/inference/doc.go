// Package inference is a small client for the Hugging Face Inference API.
//
// It covers the two calls the studio needs: text-to-image generation, which
// returns the encoded image bytes, and vision chat completions, which return
// the model's text answer about an image. Credentials are explicit Config
// values. Answers with HTTP 503 (model loading) or 429 are retried a bounded
// number of times; every other provider error is returned as *APIError.
package inference
