package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/boat-detect/internal/detection"
	"github.com/ironsheep/boat-detect/internal/imaging"
	"github.com/ironsheep/boat-detect/internal/sink"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Skipped frames are reported with their own code so clients can tell them
// apart from bad arguments.
const codeFrameSkipped = -32001

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000,
// or -32001 when the pipeline skipped the frame.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if isSkip(err) {
			return s.errorResponse(req.ID, codeFrameSkipped, "Frame skipped", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "frame_info":
		return s.handleFrameInfo(args)
	case "horizon_estimate":
		return s.handleHorizonEstimate(args)
	case "frame_analyze":
		return s.handleFrameAnalyze(args)
	case "detector_reset":
		return s.handleDetectorReset(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func isSkip(err error) bool {
	return errors.Is(err, detection.ErrNoHorizonFound) ||
		errors.Is(err, detection.ErrInvalidROI) ||
		errors.Is(err, detection.ErrInvalidHorizon)
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadFrame reads path through the cache and fits it to the configured frame
// size, so analysed frames match what a streaming run would see.
func (s *Server) loadFrame(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return imaging.FitFrame(img, s.cfg.FrameWidth, s.cfg.FrameHeight), nil
}

type frameArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

type horizonResult struct {
	Horizon      detection.Horizon `json:"horizon"`
	AngleDegrees float64           `json:"angle_deg"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
}

func (s *Server) handleHorizonEstimate(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	h, err := s.detector.EstimateHorizon(frame)
	if err != nil {
		return nil, err
	}
	b := frame.Bounds()
	return &horizonResult{
		Horizon:      h,
		AngleDegrees: h.AngleDegrees(),
		Width:        b.Dx(),
		Height:       b.Dy(),
	}, nil
}

type frameAnalyzeArgs struct {
	Path            string             `json:"path"`
	ROIHeight       int                `json:"roi_height"`
	Horizon         *detection.Horizon `json:"horizon,omitempty"`
	UseHistory      *bool              `json:"use_history,omitempty"`
	IncludeFeatures bool               `json:"include_features"`
	DebugDir        string             `json:"debug_dir,omitempty"`
}

type frameAnalyzeResult struct {
	*sink.Record
	UseHistory     bool     `json:"use_history"`
	FramesSmoothed int      `json:"frames_smoothed"`
	DebugFiles     []string `json:"debug_files,omitempty"`
}

func (s *Server) handleFrameAnalyze(args json.RawMessage) (interface{}, error) {
	var a frameAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	useHistory := true
	if a.UseHistory != nil {
		useHistory = *a.UseHistory
	}

	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	seq := s.frames
	s.frames++

	res, err := s.detector.Analyze(frame, a.ROIHeight, a.Horizon, useHistory)
	if err != nil {
		s.logger.Warn("frame skipped", "path", a.Path, "error", err)
		return nil, err
	}

	out := &frameAnalyzeResult{
		Record:         sink.NewRecord(s.runID, seq, a.Path, time.Now().UTC(), res, a.IncludeFeatures),
		UseHistory:     useHistory,
		FramesSmoothed: s.detector.FramesSmoothed(),
	}
	if a.DebugDir != "" {
		files, err := imaging.WriteDebugImages(a.DebugDir, debugPrefix(a.Path), res.Rotated, res.ROI, res.Band, res.Features, res.Detections)
		if err != nil {
			return nil, err
		}
		out.DebugFiles = files
	}
	return out, nil
}

func (s *Server) handleDetectorReset(args json.RawMessage) (interface{}, error) {
	s.detector.Reset()
	return map[string]interface{}{"reset": true}, nil
}

// debugPrefix names debug images after the analysed file.
func debugPrefix(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
