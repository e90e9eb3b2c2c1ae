package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/boat-detect/internal/config"
)

// newTestServer returns a server that analyses frames at their stored size.
func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.FrameWidth, cfg.FrameHeight = 0, 0
	s, err := New(cfg, nil, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.detector == nil {
		t.Fatal("New() did not build a detector")
	}
	if s.runID == "" {
		t.Error("New() did not assign a run ID")
	}
}

func TestNew_InvalidExtractor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FeatureExtractor = "sonar"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for unknown feature extractor")
	}
}

func TestNew_Options(t *testing.T) {
	s := newTestServer(t, WithVersion("1.2.3"), WithRunID("run-42"))
	if s.version != "1.2.3" {
		t.Errorf("version: got %s, want 1.2.3", s.version)
	}
	if s.runID != "run-42" {
		t.Errorf("runID: got %s, want run-42", s.runID)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestMCPResponse_WithError(t *testing.T) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      1,
		Error: &MCPError{
			Code:    codeFrameSkipped,
			Message: "Frame skipped",
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), `"result"`) {
		t.Errorf("error response should omit result: %s", data)
	}

	var decoded MCPResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != codeFrameSkipped {
		t.Errorf("Error: got %+v, want code %d", decoded.Error, codeFrameSkipped)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"})

	// Notifications don't get responses
	if resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})

	if resp == nil || resp.Error == nil {
		t.Fatal("Expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestHandleInitialize(t *testing.T) {
	s := newTestServer(t, WithVersion("0.3.0"))
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "init-1", Method: "initialize"})

	if resp.ID != "init-1" {
		t.Errorf("ID: got %v, want init-1", resp.ID)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != "boat-detect" {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
	if serverInfo["version"] != "0.3.0" {
		t.Errorf("serverInfo.version: got %v", serverInfo["version"])
	}
}

func TestRun(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
	}, "\n"))
	var out bytes.Buffer

	s := newTestServer(t, WithIO(in, &out))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var responses []MCPResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("bad response line: %v", err)
		}
		responses = append(responses, resp)
	}

	// The notification and the blank line produce nothing.
	if len(responses) != 4 {
		t.Fatalf("responses: got %d, want 4", len(responses))
	}
	wantIDs := []interface{}{float64(1), float64(2), nil, float64(3)}
	for i, resp := range responses {
		if resp.ID != wantIDs[i] {
			t.Errorf("response %d ID: got %v, want %v", i, resp.ID, wantIDs[i])
		}
	}
	if responses[2].Error == nil || responses[2].Error.Code != -32700 {
		t.Errorf("parse error: got %+v, want code -32700", responses[2].Error)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestServer(t, WithIO(in, &out))
	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run() error: got %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("no response expected after cancel, got %q", out.String())
	}
}
