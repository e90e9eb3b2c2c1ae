// Package server implements the MCP (Model Context Protocol) server for the
// boat detector.
//
// It exposes the detection pipeline as tools so a client can inspect single
// frames, check horizon estimates and step through a sequence frame by frame.
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
//   - frame_info: Frame dimensions and format
//   - horizon_estimate: Sky/sea split and fitted horizon line
//   - frame_analyze: Full pipeline with optional known horizon and debug images
//   - detector_reset: Clear the temporal smoothing history
//
// A server owns a single detector, so frame_analyze calls made with history
// enabled are smoothed against each other in the order they arrive.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32001 (frame skipped by the
//     pipeline) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, logger, server.WithVersion(version))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
