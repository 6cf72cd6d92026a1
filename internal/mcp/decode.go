package mcp

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is a decoded JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Result  map[string]any `json:"result,omitempty"`
	Error   *RPCError      `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Decoder turns a raw HTTP response body into a JSON-RPC response. A false
// second return value means the body carried no usable result; decoders never
// fail loudly.
type Decoder interface {
	Decode(body []byte) (*Response, bool)
}

// SSEDecoder reads the first "data: " line of a server-sent-events body.
type SSEDecoder struct{}

func (SSEDecoder) Decode(body []byte) (*Response, bool) {
	for line := range strings.Lines(string(body)) {
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		return decodeJSON([]byte(strings.TrimPrefix(line, "data: ")))
	}
	return nil, false
}

// JSONDecoder expects the body to be a bare JSON-RPC response object.
type JSONDecoder struct{}

func (JSONDecoder) Decode(body []byte) (*Response, bool) {
	return decodeJSON(body)
}

// AutoDecoder accepts both framings: SSE when a data line is present,
// otherwise a plain JSON object.
type AutoDecoder struct{}

func (AutoDecoder) Decode(body []byte) (*Response, bool) {
	if resp, ok := (SSEDecoder{}).Decode(body); ok {
		return resp, true
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		return decodeJSON(trimmed)
	}
	return nil, false
}

func decodeJSON(data []byte) (*Response, bool) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}
