// Package server implements the MCP (Model Context Protocol) server for the
// logoforge tools.
//
// This package provides a JSON-RPC 2.0 server that exposes logo generation,
// SVG conversion and product descriptions through the MCP protocol, so that
// AI assistants can produce and vectorize graphics directly.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Vectorization:
//   - vectorize_image: Trace a raster image to SVG, optionally with a PNG preview
//   - image_info: Get dimensions, format and average color
//
// Generation (requires a Hugging Face API key):
//   - generate_logo: Text-to-image logo
//   - generate_image: Text-to-image with parameters tuned for tracing
//   - generate_svg: Generate and trace in one step
//
// Descriptions (requires a Hugging Face API key):
//   - describe_product: Product descriptions in up to three languages
//
// Images are passed as a file path or as an image_url holding a data URL,
// bare base64 text or an http(s) URL.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	svc := studio.New(cfg, inference.New(cfg.Inference()))
//	srv := server.New(svc, server.WithVersion(Version))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
