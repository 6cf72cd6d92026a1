// Package unsplash searches stock photos and formats them with the
// attribution the Unsplash API guidelines require.
package unsplash

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "https://api.unsplash.com"
	MaxPerPage     = 30

	Landscape = "landscape"
	Portrait  = "portrait"
	Squarish  = "squarish"
)

type Credentials struct {
	ApplicationID string
	AccessKey     string
	SecretKey     string
}

// Complete reports whether all three credentials are set.
func (c Credentials) Complete() bool {
	return c.ApplicationID != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Image struct {
	ID               string
	URL              string
	DownloadURL      string
	Description      string
	AltDescription   string
	PhotographerName string
	PhotographerURL  string
	UnsplashURL      string
	Width            int
	Height           int
}

type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Credentials() Credentials { return c.creds }

type searchResponse struct {
	Results []struct {
		ID             string  `json:"id"`
		Description    *string `json:"description"`
		AltDescription *string `json:"alt_description"`
		Width          int     `json:"width"`
		Height         int     `json:"height"`
		URLs           struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		Links struct {
			HTML             string `json:"html"`
			DownloadLocation string `json:"download_location"`
		} `json:"links"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

// SearchPhotos returns up to perPage (capped at MaxPerPage) photos for query.
// Any failure is logged and yields an empty slice.
func (c *Client) SearchPhotos(ctx context.Context, query string, perPage int, orientation string) []Image {
	perPage = min(perPage, MaxPerPage)
	if perPage <= 0 {
		return []Image{}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	body, err := c.get(ctx, c.baseURL+"/search/photos?"+params.Encode())
	if err != nil {
		c.logger.Warn("error searching unsplash", "query", query, "error", err)
		return []Image{}
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Warn("error decoding unsplash response", "query", query, "error", err)
		return []Image{}
	}

	images := make([]Image, 0, len(data.Results))
	for _, r := range data.Results {
		if r.URLs.Regular == "" {
			continue
		}
		desc, alt := deref(r.Description), deref(r.AltDescription)
		images = append(images, Image{
			ID:               r.ID,
			URL:              r.URLs.Regular,
			DownloadURL:      r.Links.DownloadLocation,
			Description:      firstNonEmpty(desc, alt),
			AltDescription:   firstNonEmpty(alt, desc, query),
			PhotographerName: r.User.Name,
			PhotographerURL:  r.User.Links.HTML,
			UnsplashURL:      r.Links.HTML,
			Width:            r.Width,
			Height:           r.Height,
		})
	}
	return images
}

// TriggerDownload hits a photo's download_location so Unsplash counts the use.
func (c *Client) TriggerDownload(ctx context.Context, downloadURL string) bool {
	if downloadURL == "" {
		return false
	}
	if _, err := c.get(ctx, downloadURL); err != nil {
		c.logger.Warn("could not trigger unsplash download tracking", "url", downloadURL, "error", err)
		return false
	}
	return true
}

// FormatMarkdownImage triggers download tracking once, then renders the image
// with its photographer credit.
func (c *Client) FormatMarkdownImage(ctx context.Context, img Image) string {
	c.TriggerDownload(ctx, img.DownloadURL)
	return FormatMarkdown(img)
}

// FormatMarkdown renders the image and credit lines without any tracking call.
func FormatMarkdown(img Image) string {
	return fmt.Sprintf("![%s](%s)\n\n*Photo by [%s](%s) on [Unsplash](%s)*\n",
		img.AltDescription, img.URL, img.PhotographerName, img.PhotographerURL, img.UnsplashURL)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.creds.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unsplash API error: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
