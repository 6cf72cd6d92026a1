// Package mcptest provides an in-process research server for tests.
package mcptest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SessionID is the Mcp-Session-Id the server hands out on initialize.
const SessionID = "mcptest-session"

// Server answers initialize, tools/list and tools/call with SSE-framed
// replies. Results maps a tool name to the text it returns; tools missing
// from Results return an empty content array.
type Server struct {
	*httptest.Server

	Tools          []string
	Results        map[string]string
	FailInitialize bool
	PlainJSON      bool

	mu    sync.Mutex
	calls []string
}

func NewServer(tools []string, results map[string]string) *Server {
	s := &Server{Tools: tools, Results: results}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Calls returns the tool names invoked so far, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type request struct {
	ID     any            `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.Method != "initialize" && r.Header.Get("Mcp-Session-Id") != SessionID {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "initialize":
		if s.FailInitialize {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Mcp-Session-Id", SessionID)
		s.reply(w, req.ID, map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo":      map[string]any{"name": "mcptest", "version": "1.0"},
			"capabilities":    map[string]any{"tools": map[string]any{}},
		})

	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)

	case "tools/list":
		tools := make([]map[string]any, 0, len(s.Tools))
		for _, name := range s.Tools {
			tools = append(tools, map[string]any{
				"name":        name,
				"description": "test tool " + name,
				"inputSchema": map[string]any{"type": "object"},
			})
		}
		s.reply(w, req.ID, map[string]any{"tools": tools})

	case "tools/call":
		name, _ := req.Params["name"].(string)
		s.mu.Lock()
		s.calls = append(s.calls, name)
		s.mu.Unlock()

		content := []map[string]any{}
		if text, ok := s.Results[name]; ok {
			content = append(content, map[string]any{"type": "text", "text": text})
		}
		s.reply(w, req.ID, map[string]any{"content": content})

	default:
		s.write(w, map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32601, "message": "method not found"},
		})
	}
}

func (s *Server) reply(w http.ResponseWriter, id any, result map[string]any) {
	s.write(w, map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func (s *Server) write(w http.ResponseWriter, msg map[string]any) {
	data, _ := json.Marshal(msg)
	if s.PlainJSON {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
}
