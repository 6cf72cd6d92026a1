// Package research gathers reference snippets for a topic from research
// servers and feeds, and renders them into a prompt block.
package research

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/julienpequegnot/autoblogger/internal/mcp"
)

const (
	MaxServers    = 3
	PreferredTool = "microsoft_docs_search"
)

// ProbeTools are tried in order against servers that advertise no tools.
var ProbeTools = []string{"microsoft_docs_search", "search", "query", "get_content"}

// Reference is one snippet and the server or feed it came from.
type Reference struct {
	Source string
	Text   string
}

// Aggregator queries research servers one after another. A failing server
// never aborts the gather; it only contributes nothing.
type Aggregator struct {
	Servers    []string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Feeds      *FeedSource
}

func (a *Aggregator) Enabled() bool {
	if a == nil {
		return false
	}
	return len(a.Servers) > 0 || a.Feeds.Enabled()
}

// Gather returns references from at most MaxServers servers, in server order,
// followed by references from configured feeds.
func (a *Aggregator) Gather(ctx context.Context, topic string) []Reference {
	servers := a.Servers
	if len(servers) > MaxServers {
		a.logger().Debug("capping research servers", "configured", len(servers), "max", MaxServers)
		servers = servers[:MaxServers]
	}

	var refs []Reference
	for _, server := range servers {
		if ctx.Err() != nil {
			break
		}
		text := a.fromServer(ctx, server, topic)
		if text == "" {
			continue
		}
		a.logger().Info("gathered research", "server", server, "chars", len(text))
		refs = append(refs, Reference{Source: server, Text: text})
	}

	if a.Feeds.Enabled() {
		refs = append(refs, a.Feeds.Gather(ctx, topic)...)
	}
	return refs
}

func (a *Aggregator) fromServer(ctx context.Context, server, topic string) (text string) {
	log := a.logger().With("server", server)
	defer func() {
		if r := recover(); r != nil {
			log.Warn("research server failed", "error", fmt.Sprint(r))
			text = ""
		}
	}()

	opts := []mcp.Option{mcp.WithLogger(log)}
	if a.Timeout > 0 {
		opts = append(opts, mcp.WithTimeout(a.Timeout))
	}
	if a.HTTPClient != nil {
		opts = append(opts, mcp.WithHTTPClient(a.HTTPClient))
	}

	session, err := mcp.Open(ctx, server, opts...)
	if err != nil {
		log.Warn("could not connect to research server", "error", err)
		return ""
	}
	defer session.Close()

	tools := session.ListTools(ctx)
	for _, s := range strategies {
		if text := normalizeText(s.run(ctx, session, tools, topic)); text != "" {
			log.Debug("research strategy succeeded", "strategy", s.name)
			return text
		}
	}
	return ""
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// FormatReferences renders references as a Markdown section for the draft
// prompt. No references yields "".
func FormatReferences(refs []Reference) string {
	if len(refs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n## Reference Materials:\n\n")
	for i, ref := range refs {
		fmt.Fprintf(&b, "### Source %d\n%s\n\n", i+1, ref.Text)
	}
	return b.String()
}
