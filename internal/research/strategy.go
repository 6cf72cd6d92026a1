package research

import (
	"context"
	"strings"

	"github.com/julienpequegnot/autoblogger/internal/mcp"
)

// strategy picks a tool from the catalog and queries it. An empty string
// means the strategy does not apply or found nothing.
type strategy struct {
	name string
	run  func(ctx context.Context, s *mcp.Session, tools []mcp.Tool, topic string) string
}

var strategies = []strategy{
	{"preferred-tool", preferredTool},
	{"first-listed-tool", firstListedTool},
	{"probe-tools", probeTools},
}

func preferredTool(ctx context.Context, s *mcp.Session, tools []mcp.Tool, topic string) string {
	for _, t := range tools {
		if t.Name == PreferredTool {
			return s.SearchContent(ctx, topic, PreferredTool)
		}
	}
	return ""
}

func firstListedTool(ctx context.Context, s *mcp.Session, tools []mcp.Tool, topic string) string {
	if len(tools) == 0 {
		return ""
	}
	name := tools[0].Name
	if name == "" {
		name = "search"
	}
	return s.SearchContent(ctx, topic, name)
}

func probeTools(ctx context.Context, s *mcp.Session, tools []mcp.Tool, topic string) string {
	if len(tools) > 0 {
		return ""
	}
	for _, name := range ProbeTools {
		if text := s.SearchContent(ctx, topic, name); strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}
