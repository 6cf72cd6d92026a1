package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var feedPatterns = []string{
	"/feed",
	"/feed.xml",
	"/atom.xml",
	"/rss.xml",
	"/rss",
	"/index.xml",
	"/feed/atom",
	"/feed/rss",
}

// DiscoverFeed finds the feed of a site page: first from its
// <link rel="alternate"> tags, then by probing common feed paths.
func DiscoverFeed(ctx context.Context, client *http.Client, siteURL string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site url %q: %w", siteURL, err)
	}

	if href := findFeedLink(ctx, client, siteURL); href != "" {
		ref, err := url.Parse(href)
		if err == nil {
			return base.ResolveReference(ref).String(), nil
		}
	}

	baseURL := strings.TrimSuffix(siteURL, "/")
	for _, pattern := range feedPatterns {
		feedURL := baseURL + pattern
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, feedURL, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return feedURL, nil
		}
	}

	return "", fmt.Errorf("could not discover feed for %s", siteURL)
}

func findFeedLink(ctx context.Context, client *http.Client, siteURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return ""
	}
	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 100000))
	if err != nil {
		return ""
	}
	sel := doc.Find(`link[type="application/rss+xml"], link[type="application/atom+xml"]`).First()
	href, _ := sel.Attr("href")
	return strings.TrimSpace(href)
}
