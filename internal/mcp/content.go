package mcp

import (
	"context"
	"strings"
)

// SearchContent calls toolName with {"query": query} and returns the text
// fragments of the result joined by blank lines. Any failure yields "".
func (s *Session) SearchContent(ctx context.Context, query, toolName string) string {
	res := s.CallTool(ctx, toolName, map[string]any{"query": query})
	if res.Failed() {
		return ""
	}
	return ExtractText(res.Fields)
}

// ExtractText collects the text items of a tools/call result's content array.
func ExtractText(fields map[string]any) string {
	content, ok := fields["content"]
	if !ok || content == nil {
		return ""
	}

	items, ok := content.([]any)
	if !ok {
		if s, ok := content.(string); ok {
			return s
		}
		b, err := json.Marshal(content)
		if err != nil {
			return ""
		}
		return string(b)
	}

	var texts []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if m["type"] == "text" {
			text, _ := m["text"].(string)
			texts = append(texts, text)
		} else if text, ok := m["text"].(string); ok {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}
