package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// maskProperties are the mask arguments shared by the color tools.
func maskProperties() map[string]interface{} {
	return map[string]interface{}{
		"mask_color": map[string]interface{}{
			"type":        "string",
			"description": "Color excluded from the reference average: '#RRGGBB' hex or 'r,g,b' / 'r,g,b,a' components. Empty or 'none' disables masking.",
		},
		"tolerance": map[string]interface{}{
			"type":        "integer",
			"description": "Mask tolerance 0-255. A pixel is excluded when every channel is within this distance of the mask color. Default 0 (exact matches only).",
			"default":     0,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, channel layout, and bit depth.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Color Matching
		{
			Name:        "color_average",
			Description: "Compute an image's average color, optionally excluding pixels that match a mask color and optionally restricted to a rectangular region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": mergeProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional sub-rectangle to average over: x1,y1 inclusive top-left, x2,y2 exclusive bottom-right",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
				}, maskProperties()),
				"required": []string{"path"},
			},
		},
		{
			Name:        "color_match",
			Description: "Shift every pixel of a target image so its average color matches a reference image's. Writes the result next to the target (or into output_dir) with an _AVGCOLOR filename suffix.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": mergeProperties(map[string]interface{}{
					"reference": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the reference image (the tone to match)",
					},
					"target": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the target image (the image to recolor)",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the output file. Defaults to the target's directory.",
					},
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include a downscaled base64 PNG preview of the result",
						"default":     false,
					},
					"preview_dim": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum preview dimension in pixels. Default 256.",
						"default":     256,
					},
				}, maskProperties()),
				"required": []string{"reference", "target"},
			},
		},
		{
			Name:        "color_match_batch",
			Description: "Color-match a sequence of reference/target image pairs, paired by sorted folder position or by explicit path lists. Failing pairs are recorded and the batch continues.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": mergeProperties(map[string]interface{}{
					"reference_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of reference images, paired in sorted name order. Overrides 'references'.",
					},
					"target_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of target images, paired in sorted name order. Overrides 'targets'.",
					},
					"references": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit reference image paths, paired by position",
					},
					"targets": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit target image paths, paired by position",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the output files (created if missing)",
					},
					"overwrite": map[string]interface{}{
						"type":        "boolean",
						"description": "Replace existing _AVGCOLOR output files. Without it, a non-empty output directory is an error.",
						"default":     false,
					},
				}, maskProperties()),
				"required": []string{"output_dir"},
			},
		},

		// Settings
		{
			Name:        "config_get",
			Description: "Read the persisted tool settings (last used directories, mask color, mask tolerance).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "config_set",
			Description: "Update and persist tool settings. Only the provided fields are changed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"last_ref_dir": map[string]interface{}{
						"type":        "string",
						"description": "Last used reference image directory",
					},
					"last_tgt_dir": map[string]interface{}{
						"type":        "string",
						"description": "Last used target image directory",
					},
					"last_out_dir": map[string]interface{}{
						"type":        "string",
						"description": "Last used output directory",
					},
					"mask_color": map[string]interface{}{
						"type":        "string",
						"description": "Default mask color: '#RRGGBB' or 'r,g,b'",
					},
					"mask_tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Default mask tolerance 0-255",
					},
				},
			},
		},
	}
}

// mergeProperties combines tool property maps; later maps win on key
// collisions.
func mergeProperties(maps ...map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
