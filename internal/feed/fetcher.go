package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

type Item struct {
	URL         string
	Title       string
	Author      string
	PublishedAt time.Time
	Content     string
}

type Fetcher struct {
	parser    *gofeed.Parser
	client    *http.Client
	userAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Fetcher{parser: parser, client: client, userAgent: userAgent}
}

// Client is the HTTP client shared by feed parsing and discovery.
func (f *Fetcher) Client() *http.Client { return f.client }

func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]Item, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item := Item{
			URL:   entry.Link,
			Title: entry.Title,
		}

		if entry.Author != nil {
			item.Author = entry.Author.Name
		} else if len(parsed.Authors) > 0 {
			item.Author = parsed.Authors[0].Name
		}

		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.PublishedAt = *entry.UpdatedParsed
		}

		if entry.Content != "" {
			item.Content = entry.Content
		} else {
			item.Content = entry.Description
		}

		items = append(items, item)
	}

	return items, nil
}

// FetchArticle downloads a post page and returns its readable text.
func (f *Fetcher) FetchArticle(ctx context.Context, postURL string) (string, error) {
	pageURL, err := url.Parse(postURL)
	if err != nil {
		return "", fmt.Errorf("invalid post url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postURL, nil)
	if err != nil {
		return "", err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract article: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
