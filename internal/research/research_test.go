package research

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/julienpequegnot/autoblogger/internal/mcp/mcptest"
)

func TestGatherSkipsFailingAndEmptyServers(t *testing.T) {
	a := mcptest.NewServer([]string{PreferredTool}, map[string]string{PreferredTool: "Rust ownership docs"})
	defer a.Close()

	b := mcptest.NewServer(nil, nil)
	b.FailInitialize = true
	defer b.Close()

	c := mcptest.NewServer(nil, nil)
	defer c.Close()

	agg := &Aggregator{Servers: []string{a.URL, b.URL, c.URL}, Timeout: 5 * time.Second}
	refs := agg.Gather(context.Background(), "Rust ownership")

	assert.Equal(t, len(refs), 1)
	assert.Equal(t, refs[0].Source, a.URL)
	assert.Equal(t, refs[0].Text, "Rust ownership docs")
	assert.Equal(t, c.Calls(), ProbeTools)
}

func TestGatherUnreachableServer(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	agg := &Aggregator{Servers: []string{url}, Timeout: time.Second}
	refs := agg.Gather(context.Background(), "anything")
	assert.Equal(t, len(refs), 0)
}

func TestGatherCapsServers(t *testing.T) {
	var servers []*mcptest.Server
	var urls []string
	for i := 0; i < MaxServers+1; i++ {
		s := mcptest.NewServer([]string{"search"}, map[string]string{"search": fmt.Sprintf("server %d", i)})
		defer s.Close()
		servers = append(servers, s)
		urls = append(urls, s.URL)
	}

	agg := &Aggregator{Servers: urls}
	refs := agg.Gather(context.Background(), "topic")

	assert.Equal(t, len(refs), MaxServers)
	assert.Equal(t, len(servers[MaxServers].Calls()), 0)
	for i, ref := range refs {
		assert.Equal(t, ref.Text, fmt.Sprintf("server %d", i))
	}
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name      string
		tools     []string
		results   map[string]string
		wantText  string
		wantCalls []string
	}{
		{
			name:      "preferred tool wins over first listed",
			tools:     []string{"fetch", PreferredTool},
			results:   map[string]string{"fetch": "fetched", PreferredTool: "docs"},
			wantText:  "docs",
			wantCalls: []string{PreferredTool},
		},
		{
			name:      "first listed tool",
			tools:     []string{"lookup", "other"},
			results:   map[string]string{"lookup": "looked up"},
			wantText:  "looked up",
			wantCalls: []string{"lookup"},
		},
		{
			name:      "empty preferred falls through to first listed",
			tools:     []string{"lookup", PreferredTool},
			results:   map[string]string{"lookup": "looked up"},
			wantText:  "looked up",
			wantCalls: []string{PreferredTool, "lookup"},
		},
		{
			name:      "probes stop at first non-empty",
			tools:     nil,
			results:   map[string]string{"query": "probed", "get_content": "never"},
			wantText:  "probed",
			wantCalls: []string{"microsoft_docs_search", "search", "query"},
		},
		{
			name:      "no probes when catalog is non-empty",
			tools:     []string{"silent"},
			results:   map[string]string{"search": "unused"},
			wantText:  "",
			wantCalls: []string{"silent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mcptest.NewServer(tt.tools, tt.results)
			defer srv.Close()

			agg := &Aggregator{Servers: []string{srv.URL}}
			refs := agg.Gather(context.Background(), "topic")

			if tt.wantText == "" {
				assert.Equal(t, len(refs), 0)
			} else {
				assert.Equal(t, len(refs), 1)
				assert.Equal(t, refs[0].Text, tt.wantText)
			}
			assert.Equal(t, srv.Calls(), tt.wantCalls)
		})
	}
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("transport exploded")
}

func TestGatherRecoversFromPanics(t *testing.T) {
	agg := &Aggregator{
		Servers:    []string{"http://a.invalid", "http://b.invalid"},
		HTTPClient: &http.Client{Transport: panicTransport{}},
	}

	refs := agg.Gather(context.Background(), "topic")
	assert.Equal(t, len(refs), 0)
}

func TestGatherWhitespaceOnlyIsEmpty(t *testing.T) {
	srv := mcptest.NewServer([]string{"search"}, map[string]string{"search": "  \n\n  "})
	defer srv.Close()

	agg := &Aggregator{Servers: []string{srv.URL}}
	assert.Equal(t, len(agg.Gather(context.Background(), "topic")), 0)
}

func TestGatherKeepsServerMarkup(t *testing.T) {
	snippet := "```html\n<div class=\"card\"><p>Hello</p></div>\n```"
	srv := mcptest.NewServer([]string{PreferredTool}, map[string]string{PreferredTool: "\n" + snippet + "\n\n\n\n"})
	defer srv.Close()

	agg := &Aggregator{Servers: []string{srv.URL}}
	refs := agg.Gather(context.Background(), "html cards")

	assert.Equal(t, len(refs), 1)
	assert.Equal(t, refs[0].Text, snippet)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, normalizeText("  a\r\n\r\n\r\n\r\nb  "), "a\n\nb")
	assert.Equal(t, normalizeText("<p>kept</p>"), "<p>kept</p>")
}

func TestEnabled(t *testing.T) {
	var nilAgg *Aggregator
	assert.Equal(t, nilAgg.Enabled(), false)
	assert.Equal(t, (&Aggregator{}).Enabled(), false)
	assert.Equal(t, (&Aggregator{Servers: []string{"http://x"}}).Enabled(), true)
	assert.Equal(t, (&Aggregator{Feeds: &FeedSource{URLs: []string{"http://x/feed"}}}).Enabled(), true)
}

func TestFormatReferences(t *testing.T) {
	assert.Equal(t, FormatReferences(nil), "")

	got := FormatReferences([]Reference{
		{Source: "http://a", Text: "first"},
		{Source: "http://b", Text: "second"},
	})
	want := "\n\n## Reference Materials:\n\n### Source 1\nfirst\n\n### Source 2\nsecond\n\n"
	assert.Equal(t, got, want)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  plain text  ", "plain text"},
		{"markdown kept", "# Title\n\n- item", "# Title\n\n- item"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"html", "<div><p>Hello <b>world</b></p><script>x()</script></div>", "Hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, cleanText(tt.in), tt.want)
		})
	}
}

func TestFeedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>Baking bread</title><link>https://example.com/bread</link><description>Flour and water.</description></item>
<item><title>Rust ownership explained</title><link>https://example.com/rust</link><description>&lt;p&gt;Borrowing in &lt;b&gt;Rust&lt;/b&gt;.&lt;/p&gt;</description></item>
</channel></rss>`)
	}))
	defer srv.Close()

	agg := &Aggregator{Feeds: NewFeedSource([]string{srv.URL}, 5*time.Second, "test")}
	refs := agg.Gather(context.Background(), "Rust ownership")

	assert.Equal(t, len(refs), 1)
	assert.Equal(t, refs[0].Source, srv.URL)
	assert.Equal(t, strings.Contains(refs[0].Text, "**Rust ownership explained** (https://example.com/rust)"), true)
	assert.Equal(t, strings.Contains(refs[0].Text, "Borrowing in Rust."), true)
	assert.Equal(t, strings.Contains(refs[0].Text, "bread"), false)
}

func TestFeedSourceByline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/"><channel><title>t</title>
<item><title>Rust ownership explained</title><link>https://example.com/rust</link><dc:creator>Ferris</dc:creator><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate><description>Borrowing in Rust.</description></item>
</channel></rss>`)
	}))
	defer srv.Close()

	refs := NewFeedSource([]string{srv.URL}, 5*time.Second, "test").Gather(context.Background(), "Rust ownership")

	assert.Equal(t, len(refs), 1)
	assert.Equal(t, strings.HasPrefix(refs[0].Text, "**Rust ownership explained** (https://example.com/rust) - by Ferris, 2006-01-02\n\n"), true)
}

func TestFeedSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fs := NewFeedSource([]string{srv.URL}, time.Second, "")
	assert.Equal(t, len(fs.Gather(context.Background(), "rust")), 0)
}

func TestFeedSourceFullText(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>Rust ownership explained</title><link>%s/posts/rust</link><description>Short teaser.</description></item>
</channel></rss>`, base)
	})
	mux.HandleFunc("/posts/rust", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Rust ownership explained</title></head><body><article>
<h1>Rust ownership explained</h1>
<p>Every value in Rust has exactly one owner at a time. When the owner goes out of scope the value is dropped and its memory is released.</p>
<p>References borrow a value without taking ownership. Many shared references may coexist, but a mutable reference must be unique while it lives.</p>
</article></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	fs := NewFeedSource([]string{srv.URL + "/feed.xml"}, 5*time.Second, "test")
	fs.FullText = true
	refs := fs.Gather(context.Background(), "Rust ownership")

	assert.Equal(t, len(refs), 1)
	assert.Equal(t, strings.Contains(refs[0].Text, "Every value in Rust has exactly one owner"), true)
	assert.Equal(t, strings.Contains(refs[0].Text, "Short teaser."), false)
}
