package research

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/julienpequegnot/autoblogger/internal/feed"
)

const (
	MaxFeedItems    = 5
	maxSummaryRunes = 500
	minSummaryRunes = 200
)

// FeedSource turns RSS/Atom feeds into references. Each feed contributes at
// most one reference made of its items that mention the topic.
type FeedSource struct {
	URLs    []string
	Fetcher *feed.Fetcher
	Logger  *slog.Logger
	// FullText replaces short item summaries with the linked article's text.
	FullText bool
}

func NewFeedSource(urls []string, timeout time.Duration, userAgent string) *FeedSource {
	return &FeedSource{
		URLs:    urls,
		Fetcher: feed.NewFetcher(timeout, userAgent),
	}
}

func (f *FeedSource) Enabled() bool {
	return f != nil && len(f.URLs) > 0
}

func (f *FeedSource) Gather(ctx context.Context, topic string) []Reference {
	var refs []Reference
	for _, u := range f.URLs {
		if ctx.Err() != nil {
			break
		}
		if text := f.fromFeed(ctx, u, topic); text != "" {
			refs = append(refs, Reference{Source: u, Text: text})
		}
	}
	return refs
}

type rankedItem struct {
	item  feed.Item
	score float64
}

func (f *FeedSource) fromFeed(ctx context.Context, feedURL, topic string) (text string) {
	log := f.logger().With("feed", feedURL)
	defer func() {
		if r := recover(); r != nil {
			log.Warn("feed research failed", "error", fmt.Sprint(r))
			text = ""
		}
	}()

	items, err := f.Fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		discovered, derr := feed.DiscoverFeed(ctx, f.Fetcher.Client(), feedURL)
		if derr != nil {
			log.Warn("could not fetch feed", "error", err)
			return ""
		}
		log.Debug("discovered feed", "url", discovered)
		if items, err = f.Fetcher.FetchFeed(ctx, discovered); err != nil {
			log.Warn("could not fetch discovered feed", "url", discovered, "error", err)
			return ""
		}
	}

	var ranked []rankedItem
	for _, item := range items {
		summary := cleanText(item.Content)
		score := feed.Relevance(topic, item.Title, summary)
		if score <= 0 {
			continue
		}
		item.Content = summary
		ranked = append(ranked, rankedItem{item: item, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > MaxFeedItems {
		ranked = ranked[:MaxFeedItems]
	}
	if len(ranked) == 0 {
		return ""
	}

	if f.FullText {
		for i := range ranked {
			item := &ranked[i].item
			if item.URL == "" || len([]rune(item.Content)) >= minSummaryRunes {
				continue
			}
			full, err := f.Fetcher.FetchArticle(ctx, item.URL)
			if err != nil {
				log.Debug("could not fetch article", "url", item.URL, "error", err)
				continue
			}
			if full = cleanText(full); full != "" {
				item.Content = full
			}
		}
	}

	parts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**", strings.TrimSpace(r.item.Title))
		if r.item.URL != "" {
			fmt.Fprintf(&b, " (%s)", r.item.URL)
		}
		if by := byline(r.item); by != "" {
			b.WriteString(" - " + by)
		}
		if r.item.Content != "" {
			b.WriteString("\n\n")
			b.WriteString(truncateRunes(r.item.Content, maxSummaryRunes))
		}
		parts = append(parts, b.String())
	}
	log.Info("gathered feed research", "items", len(parts))
	return strings.Join(parts, "\n\n")
}

// byline credits an item's author and publish date when the feed has them.
func byline(item feed.Item) string {
	var parts []string
	if a := strings.TrimSpace(item.Author); a != "" {
		parts = append(parts, "by "+a)
	}
	if !item.PublishedAt.IsZero() {
		parts = append(parts, item.PublishedAt.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}

func (f *FeedSource) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
