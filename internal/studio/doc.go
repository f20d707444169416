// Package studio implements the logoforge tools on top of the inference
// provider and the vectorization pipeline.
//
// A Service generates logos and vectorization-ready images, converts raster
// images to SVG with a content-addressed result cache, and writes product
// descriptions in several languages at once. Transports (the MCP server and
// the HTTP API) share one Service.
//
// Requests that fail validation return errors wrapping ErrInvalidRequest.
// Pipeline errors from package vectorize are returned as is, and provider
// errors wrap *inference.APIError or inference.ErrMissingAPIKey.
package studio
