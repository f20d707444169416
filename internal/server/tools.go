package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties describe the two ways a tool accepts an image.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"image_url": map[string]interface{}{
			"type":        "string",
			"description": "Image as a data URL (data:image/png;base64,...), bare base64 or an http(s) URL. Used when path is not set.",
		},
	}
}

// traceProperties describe the vectorization options. Omitted options keep
// the server defaults.
func traceProperties() map[string]interface{} {
	return map[string]interface{}{
		"turd_size": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum area in pixels of a shape or hole to keep. Default 100",
		},
		"polarity": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"dark", "light"},
			"description": "Trace dark shapes on a light background (dark) or the reverse (light). Default dark",
		},
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Binarization threshold 1-255. Default 128",
		},
		"opt_tolerance": map[string]interface{}{
			"type":        "number",
			"description": "Maximum deviation in pixels when simplifying outlines. Default 1.0",
		},
		"alpha_max": map[string]interface{}{
			"type":        "number",
			"description": "Corner threshold; higher values give smoother shapes. Default 1.0",
		},
		"optimize_curves": map[string]interface{}{
			"type":        "boolean",
			"description": "Fit Bézier curves. When false, outlines are polygons. Default true",
		},
		"color": map[string]interface{}{
			"type":        "string",
			"description": "Fill color (#rgb, #rrggbb, rgb(), rgba()) or \"auto\" to sample the image. Default #000000",
		},
		"background": map[string]interface{}{
			"type":        "string",
			"description": "Background color, or \"transparent\" for none. Default transparent",
		},
		"stroke_width": map[string]interface{}{
			"type":        "number",
			"description": "Outline width. Default 0 (no outline)",
		},
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Output width. Height scales proportionally when not set",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Output height. Width scales proportionally when not set",
		},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Vectorization
		{
			Name:        "vectorize_image",
			Description: "Convert a raster image (PNG, JPEG, GIF, BMP, TIFF, WebP) to a clean SVG by tracing its shapes. Best for logos, icons and line art.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageSourceProperties(), traceProperties(), map[string]interface{}{
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a PNG rendering of the traced shapes. Default false",
					},
				}),
			},
		},
		{
			Name:        "image_info",
			Description: "Get the dimensions, format, color depth and average color of an image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageSourceProperties(),
			},
		},

		// Generation
		{
			Name:        "generate_logo",
			Description: "Generate a logo image from a text prompt with a hosted text-to-image model. Returns a data URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "Description of the logo",
					},
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Optional model ID. Defaults to the configured image model",
					},
				},
				"required": []string{"prompt"},
			},
		},
		{
			Name:        "generate_image",
			Description: "Generate a flat image suited for vectorization from a text prompt. Returns a data URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "Description of the image",
					},
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Optional model ID. Defaults to the configured image model",
					},
				},
				"required": []string{"prompt"},
			},
		},
		{
			Name:        "generate_svg",
			Description: "Generate an image from a text prompt and trace it to SVG in one step.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(traceProperties(), map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "Description of the graphic",
					},
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Optional model ID. Defaults to the configured image model",
					},
				}),
				"required": []string{"prompt"},
			},
		},

		// Descriptions
		{
			Name:        "describe_product",
			Description: "Write product descriptions of an image in up to three languages with a hosted vision-language model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageSourceProperties(), map[string]interface{}{
					"languages": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Languages to write in, e.g. [\"english\", \"french\"]",
					},
					"length": map[string]interface{}{
						"type":        "string",
						"description": "Description length: short, medium or long. Default medium",
					},
					"model": map[string]interface{}{
						"type":        "string",
						"description": "Optional vision model ID from the allowed list",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"text", "html"},
						"description": "Return Markdown text or rendered HTML. Default text",
					},
				}),
				"required": []string{"languages"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return result(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
