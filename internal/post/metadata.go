package post

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/julienpequegnot/autoblogger/internal/llm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	FallbackAbstract = "An informative article generated by Auto-Blogger."
	DefaultSlug      = "blog-post"

	minKeywords = 3
	maxKeywords = 8
	maxSlugLen  = 50
)

var (
	FallbackKeywords = []string{"blog", "article", "content"}

	errMissingField = errors.New("missing required metadata field")
)

type Metadata struct {
	Keywords []string
	Abstract string
	Slug     string
	// Fallback is set when the defaults replaced the model's reply.
	Fallback bool
}

func fallbackMetadata(topic string) Metadata {
	return Metadata{
		Keywords: append([]string(nil), FallbackKeywords...),
		Abstract: FallbackAbstract,
		Slug:     FallbackSlug(topic),
		Fallback: true,
	}
}

// parseMetadata decodes the model's {keywords, abstract, slug} reply. A
// missing field, an empty value or fewer than three keywords is an error.
func parseMetadata(reply, topic string) (Metadata, error) {
	var raw struct {
		Keywords *[]string `json:"keywords"`
		Abstract *string   `json:"abstract"`
		Slug     *string   `json:"slug"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &raw); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if raw.Keywords == nil || raw.Abstract == nil || raw.Slug == nil {
		return Metadata{}, errMissingField
	}

	var keywords []string
	seen := make(map[string]bool)
	for _, k := range *raw.Keywords {
		k = strings.Join(strings.Fields(k), " ")
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		keywords = append(keywords, k)
	}
	if len(keywords) < minKeywords {
		return Metadata{}, fmt.Errorf("expected at least %d keywords, got %d", minKeywords, len(keywords))
	}
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	abstract := strings.TrimSpace(*raw.Abstract)
	if abstract == "" {
		return Metadata{}, fmt.Errorf("%w: abstract is empty", errMissingField)
	}

	slug := Slugify(*raw.Slug)
	if slug == "" {
		slug = FallbackSlug(topic)
	}

	return Metadata{Keywords: keywords, Abstract: abstract, Slug: slug}, nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases s, strips diacritics and keeps only [a-z0-9] words
// joined by single hyphens, cut to 50 characters. It may return "".
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || unicode.IsSpace(r):
			pendingSep = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// FallbackSlug is Slugify(topic), or "blog-post" when nothing survives.
func FallbackSlug(topic string) string {
	if slug := Slugify(topic); slug != "" {
		return slug
	}
	return DefaultSlug
}
