package post

import (
	"context"
	"strings"

	"github.com/julienpequegnot/autoblogger/internal/unsplash"
)

// MaxImages caps how many images a post gets.
const MaxImages = 3

// ImageSource is the subset of the Unsplash client the pipeline uses.
type ImageSource interface {
	Credentials() unsplash.Credentials
	SearchPhotos(ctx context.Context, query string, perPage int, orientation string) []unsplash.Image
	FormatMarkdownImage(ctx context.Context, img unsplash.Image) string
}

// spliceImages places image blocks right after the front matter, or at the
// top of the document when it has none.
func spliceImages(doc string, blocks []string) string {
	if len(blocks) == 0 {
		return doc
	}
	images := strings.Join(blocks, "\n")

	front, body, ok := SplitFrontMatter(doc)
	if !ok {
		return images + "\n" + doc
	}
	body = strings.TrimPrefix(body, "\n")
	return front + "\n" + images + "\n" + body
}
