package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the frame image",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "frame_info",
			Description: "Load a frame image and return its dimensions, format and size on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "horizon_estimate",
			Description: "Estimate the horizon line of a frame by splitting sky from sea. Returns the line as direction (dx, dy) and point (x0, y0) in row/column order, plus its tilt in degrees.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_analyze",
			Description: "Run the detector on a frame: level the horizon, cut a band around it, extract column features, smooth them against earlier frames and threshold them. Returns the column spans flagged as possible boats.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi_height": map[string]interface{}{
						"type":        "integer",
						"description": "Height in rows of the band around the horizon. Defaults to the configured height.",
					},
					"horizon": map[string]interface{}{
						"type":        "object",
						"description": "Known horizon line. When omitted the horizon is estimated from the frame.",
						"properties": map[string]interface{}{
							"dx": map[string]interface{}{"type": "number"},
							"dy": map[string]interface{}{"type": "number"},
							"x0": map[string]interface{}{"type": "number"},
							"y0": map[string]interface{}{"type": "number"},
						},
						"required": []string{"dx", "dy", "x0", "y0"},
					},
					"use_history": map[string]interface{}{
						"type":        "boolean",
						"description": "Blend features with earlier frames. Default true",
						"default":     true,
					},
					"include_features": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the smoothed feature row in the result. Default false",
						"default":     false,
					},
					"debug_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write debug PNGs to (band, overlay, features, detections)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "detector_reset",
			Description: "Forget the feature history so the next frame starts a new sequence.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
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
