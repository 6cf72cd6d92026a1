// Package mcp is a minimal client for research servers that speak JSON-RPC
// over HTTP, replying with server-sent-events framing.
package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	ProtocolVersion = "2024-11-05"
	DefaultTimeout  = 30 * time.Second

	sessionHeader = "Mcp-Session-Id"
	maxBodyBytes  = 8 << 20
)

// ClientVersion is reported to servers in the initialize handshake.
var ClientVersion = "0.1.0"

var (
	ErrNoResult       = errors.New("no result in response")
	ErrNotInitialized = errors.New("session not initialized")
)

type State int

const (
	Uninitialized State = iota
	Initialized
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StatusError is returned for non-2xx HTTP replies.
type StatusError struct {
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", e.Method, e.Code)
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Result is the outcome of a tools/call request. Error is set instead of
// Fields when the call failed for any reason.
type Result struct {
	Fields map[string]any
	Error  string
}

func (r Result) Failed() bool { return r.Error != "" }

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Session is one initialized conversation with a research server. Obtain it
// with Open and release it with Close.
type Session struct {
	endpoint   string
	timeout    time.Duration
	client     *http.Client
	ownsClient bool
	decoder    Decoder
	logger     *slog.Logger

	state      State
	sessionID  string
	serverInfo ServerInfo
}

type Option func(*Session)

func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.client = c }
}

// WithDecoder replaces the response decoder. The default accepts both SSE and
// plain JSON bodies.
func WithDecoder(d Decoder) Option {
	return func(s *Session) { s.decoder = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Open connects to endpoint and performs the initialize handshake. On any
// failure no session is returned.
func Open(ctx context.Context, endpoint string, opts ...Option) (*Session, error) {
	s := &Session{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  DefaultTimeout,
		decoder:  AutoDecoder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
		s.ownsClient = true
	}

	if err := s.initialize(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize session with %s: %w", s.endpoint, err)
	}
	return s, nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Endpoint() string { return s.endpoint }

func (s *Session) ServerInfo() ServerInfo { return s.serverInfo }

// Close releases the session. It is safe to call more than once.
func (s *Session) Close() error {
	if s == nil || s.state == Closed {
		return nil
	}
	s.state = Closed
	if s.ownsClient {
		s.client.CloseIdleConnections()
	}
	return nil
}

func (s *Session) initialize(ctx context.Context) error {
	resp, err := s.post(ctx, rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params: map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{},
			"clientInfo": map[string]any{
				"name":    "autoblogger",
				"version": ClientVersion,
			},
		},
	})
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("initialize rejected: %s", resp.Error.Message)
	}
	if resp.Result == nil {
		return ErrNoResult
	}

	s.state = Initialized
	if info, ok := resp.Result["serverInfo"].(map[string]any); ok {
		s.serverInfo.Name, _ = info["name"].(string)
		s.serverInfo.Version, _ = info["version"].(string)
	}
	s.logger.Info("mcp session initialized",
		"server", s.endpoint,
		"name", valueOr(s.serverInfo.Name, "Unknown"),
		"version", valueOr(s.serverInfo.Version, "Unknown"))

	if err := s.notify(ctx, "notifications/initialized"); err != nil {
		s.logger.Debug("initialized notification failed", "server", s.endpoint, "error", err)
	}
	return nil
}

// ListTools returns the server's tool catalog, or an empty slice on any failure.
func (s *Session) ListTools(ctx context.Context) []Tool {
	if s.state != Initialized {
		return []Tool{}
	}

	resp, err := s.post(ctx, rpcRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if err != nil {
		s.logger.Warn("could not list tools", "server", s.endpoint, "error", err)
		return []Tool{}
	}
	if resp.Error != nil || resp.Result == nil {
		return []Tool{}
	}

	raw, ok := resp.Result["tools"].([]any)
	if !ok {
		return []Tool{}
	}
	tools := make([]Tool, 0, len(raw))
	for _, v := range raw {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var t Tool
		if err := json.Unmarshal(b, &t); err != nil {
			continue
		}
		tools = append(tools, t)
	}

	if len(tools) > 0 {
		names := make([]string, len(tools))
		for i, t := range tools {
			names[i] = valueOr(t.Name, "unknown")
		}
		s.logger.Debug("available tools", "server", s.endpoint, "tools", names)
	}
	return tools
}

// CallTool invokes a tool. Failures are reported in Result.Error.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) Result {
	if s.state != Initialized {
		return Result{Error: ErrNotInitialized.Error()}
	}

	resp, err := s.post(ctx, rpcRequest{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params: map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		s.logger.Warn("error calling tool", "server", s.endpoint, "tool", name, "error", err)
		return Result{Error: err.Error()}
	}
	if resp.Error != nil {
		return Result{Error: resp.Error.Message}
	}
	if resp.Result == nil {
		return Result{Error: ErrNoResult.Error()}
	}
	if isErr, _ := resp.Result["isError"].(bool); isErr {
		return Result{Error: fmt.Sprintf("tool %s reported an error", name)}
	}
	return Result{Fields: resp.Result}
}

func (s *Session) post(ctx context.Context, req rpcRequest) (*Response, error) {
	body, err := s.send(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, ok := s.decoder.Decode(body)
	if !ok {
		return nil, fmt.Errorf("%s: %w", req.Method, ErrNoResult)
	}
	return resp, nil
}

func (s *Session) notify(ctx context.Context, method string) error {
	_, err := s.send(ctx, rpcRequest{JSONRPC: "2.0", Method: method})
	return err
}

func (s *Session) send(ctx context.Context, req rpcRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if s.sessionID != "" {
		httpReq.Header.Set(sessionHeader, s.sessionID)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: req.Method, Code: resp.StatusCode}
	}
	if id := resp.Header.Get(sessionHeader); id != "" {
		s.sessionID = id
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Method, err)
	}
	return data, nil
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
