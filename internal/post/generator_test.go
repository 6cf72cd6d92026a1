package post

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"gopkg.in/yaml.v3"

	"github.com/julienpequegnot/autoblogger/internal/research"
	"github.com/julienpequegnot/autoblogger/internal/unsplash"
)

const testDraft = "> This article was written with partial assistance from generative AI.\n\n# Understanding Rust Ownership\n\nOwnership is Rust's most unique feature.\n\n---\n\n## Conclusion\n\nBorrow wisely.\n"

const testMetadata = "```json\n{\"keywords\": [\"rust\", \"ownership\", \"borrow checker\", \"memory safety\", \"lifetimes\"], \"abstract\": \"Learn how Rust manages memory without a garbage collector.\", \"slug\": \"rust-ownership-model\"}\n```"

type call struct {
	system, user string
}

type fakeLLM struct {
	replies []string
	errs    []error
	calls   []call
}

func (f *fakeLLM) Complete(ctx context.Context, system, user string) (string, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{system, user})
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("unexpected call")
}

type fakeImages struct {
	creds     unsplash.Credentials
	images    []unsplash.Image
	perPage   int
	formatted int
	panics    bool
}

func (f *fakeImages) Credentials() unsplash.Credentials { return f.creds }

func (f *fakeImages) SearchPhotos(ctx context.Context, query string, perPage int, orientation string) []unsplash.Image {
	if f.panics {
		panic("search exploded")
	}
	f.perPage = perPage
	if perPage < len(f.images) {
		return f.images[:perPage]
	}
	return f.images
}

func (f *fakeImages) FormatMarkdownImage(ctx context.Context, img unsplash.Image) string {
	f.formatted++
	return unsplash.FormatMarkdown(img)
}

type fakeResearcher struct {
	refs   []research.Reference
	panics bool
}

func (f *fakeResearcher) Enabled() bool { return true }

func (f *fakeResearcher) Gather(ctx context.Context, topic string) []research.Reference {
	if f.panics {
		panic("research exploded")
	}
	return f.refs
}

var fixedDate = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedDate }

func rustRequest() Request {
	return Request{
		Topic:    "Rust ownership model",
		Language: "English",
		Tone:     "professional",
		Length:   Short,
		Author:   "Auto-Blogger",
	}
}

func testImages() *fakeImages {
	return &fakeImages{
		creds: unsplash.Credentials{ApplicationID: "app", AccessKey: "access", SecretKey: "secret"},
		images: []unsplash.Image{
			{ID: "1", URL: "https://img/1.jpg", AltDescription: "crab", PhotographerName: "Ann", PhotographerURL: "https://u/ann", UnsplashURL: "https://u/p/1"},
			{ID: "2", URL: "https://img/2.jpg", AltDescription: "chain", PhotographerName: "Bob", PhotographerURL: "https://u/bob", UnsplashURL: "https://u/p/2"},
			{ID: "3", URL: "https://img/3.jpg", AltDescription: "gear", PhotographerName: "Cy", PhotographerURL: "https://u/cy", UnsplashURL: "https://u/p/3"},
			{ID: "4", URL: "https://img/4.jpg", AltDescription: "rust", PhotographerName: "Di", PhotographerURL: "https://u/di", UnsplashURL: "https://u/p/4"},
		},
	}
}

type frontMatter struct {
	Title            string   `yaml:"title"`
	Date             string   `yaml:"date"`
	Author           string   `yaml:"author"`
	Language         string   `yaml:"language"`
	Slug             string   `yaml:"slug"`
	Keywords         []string `yaml:"keywords"`
	Abstract         string   `yaml:"abstract"`
	MetadataFallback bool     `yaml:"metadata_fallback"`
}

func parseDoc(t *testing.T, doc string) (frontMatter, string) {
	t.Helper()
	front, body, ok := SplitFrontMatter(doc)
	if !ok {
		t.Fatalf("expected front matter in:\n%s", doc)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(front, "---\n"), "---\n")
	var fm frontMatter
	if err := yaml.Unmarshal([]byte(inner), &fm); err != nil {
		t.Fatalf("invalid front matter yaml: %v\n%s", err, inner)
	}
	return fm, body
}

func TestGenerateEndToEnd(t *testing.T) {
	llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
	g := NewGenerator(llm, WithClock(fixedClock))

	doc, err := g.Generate(context.Background(), rustRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, strings.HasPrefix(doc, "---\n"), true)
	assert.Equal(t, strings.Contains(doc, "\ntitle: \"Rust ownership model\"\n"), true)
	assert.Equal(t, strings.Contains(doc, "\nabstract: |\n"), true)

	fm, body := parseDoc(t, doc)
	assert.Equal(t, fm.Title, "Rust ownership model")
	assert.Equal(t, fm.Date, "2025-03-14")
	assert.Equal(t, fm.Author, "Auto-Blogger")
	assert.Equal(t, fm.Language, "English")
	assert.Equal(t, fm.Slug, "rust-ownership-model")
	assert.Equal(t, fm.Keywords, []string{"rust", "ownership", "borrow checker", "memory safety", "lifetimes"})
	assert.Equal(t, fm.Abstract, "Learn how Rust manages memory without a garbage collector.\n")
	assert.Equal(t, fm.MetadataFallback, false)

	body = strings.TrimPrefix(body, "\n")
	assert.Equal(t, body, testDraft)
	assert.Equal(t, strings.HasPrefix(body, "> "), true)
	assert.Equal(t, strings.Contains(strings.SplitN(body, "\n", 2)[0], "AI"), true)

	assert.Equal(t, len(llm.calls), 2)
	assert.Equal(t, strings.Contains(llm.calls[0].user, "Target Length: 300-500 words"), true)
	assert.Equal(t, strings.Contains(llm.calls[0].user, "10. Incorporates"), false)
	assert.Equal(t, strings.Contains(llm.calls[1].user, "Generate keywords and abstract in English."), true)
}

func TestGenerateMetadataFallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"malformed json", "Here are your keywords: rust, memory", nil},
		{"missing slug", `{"keywords":["a","b","c"],"abstract":"x"}`, nil},
		{"too few keywords", `{"keywords":["a"],"abstract":"x","slug":"y"}`, nil},
		{"empty abstract", `{"keywords":["a","b","c"],"abstract":"  ","slug":"y"}`, nil},
		{"model error", "", errors.New("rate limited")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{replies: []string{testDraft, tt.reply}, errs: []error{nil, tt.err}}
			g := NewGenerator(llm, WithClock(fixedClock))

			doc, err := g.Generate(context.Background(), rustRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			fm, _ := parseDoc(t, doc)
			assert.Equal(t, fm.Keywords, []string{"blog", "article", "content"})
			assert.Equal(t, fm.Abstract, FallbackAbstract+"\n")
			assert.Equal(t, fm.Slug, "rust-ownership-model")
			assert.Equal(t, fm.MetadataFallback, true)
		})
	}
}

func TestGenerateDraftErrorIsFatal(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	g := NewGenerator(llm)

	_, err := g.Generate(context.Background(), rustRequest())
	assert.Equal(t, errors.Is(err, ErrDraft), true)
	assert.Equal(t, len(llm.calls), 1)
}

func TestGenerateInvalidRequest(t *testing.T) {
	llm := &fakeLLM{}
	g := NewGenerator(llm)

	_, err := g.Generate(context.Background(), Request{Topic: "  "})
	assert.Equal(t, errors.Is(err, ErrEmptyTopic), true)

	_, err = g.Generate(context.Background(), Request{Topic: "x", Length: Short, ImageCount: -1})
	assert.Equal(t, errors.Is(err, ErrNegativeImages), true)

	for _, length := range []Length{"gigantic", ""} {
		_, err = g.Generate(context.Background(), Request{Topic: "x", Length: length})
		assert.Equal(t, errors.Is(err, ErrInvalidLength), true)
	}
	assert.Equal(t, len(llm.calls), 0)
}

func TestGenerateWithResearch(t *testing.T) {
	llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
	r := &fakeResearcher{refs: []research.Reference{{Source: "http://docs", Text: "Each value has an owner."}}}
	g := NewGenerator(llm, WithResearch(r), WithClock(fixedClock))

	req := rustRequest()
	req.UseResearch = true
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, strings.Contains(llm.calls[0].system, "You have access to reference materials"), true)
	assert.Equal(t, strings.Contains(llm.calls[0].user, "## Reference Materials:\n\n### Source 1\nEach value has an owner."), true)
	assert.Equal(t, strings.Contains(llm.calls[0].user, "10. Incorporates insights"), true)
}

func TestGenerateResearchPanicContinues(t *testing.T) {
	llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
	g := NewGenerator(llm, WithResearch(&fakeResearcher{panics: true}), WithClock(fixedClock))

	req := rustRequest()
	req.UseResearch = true
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, strings.Contains(llm.calls[0].user, "Reference Materials"), false)
}

func TestGenerateWithTwoImages(t *testing.T) {
	llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
	images := testImages()
	g := NewGenerator(llm, WithImages(images), WithClock(fixedClock))

	req := rustRequest()
	req.ImageCount = 2
	doc, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, images.perPage, 2)
	assert.Equal(t, images.formatted, 2)
	assert.Equal(t, strings.Count(doc, "\nslug: "), 1)
	assert.Equal(t, strings.Count(doc, "*Photo by ["), 2)

	_, body := parseDoc(t, doc)
	want := "\n![crab](https://img/1.jpg)\n\n*Photo by [Ann](https://u/ann) on [Unsplash](https://u/p/1)*\n" +
		"\n![chain](https://img/2.jpg)\n\n*Photo by [Bob](https://u/bob) on [Unsplash](https://u/p/2)*\n" +
		"\n" + testDraft
	assert.Equal(t, body, want)
}

func TestGenerateImageCountCapped(t *testing.T) {
	llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
	images := testImages()
	g := NewGenerator(llm, WithImages(images), WithClock(fixedClock))

	req := rustRequest()
	req.ImageCount = 10
	doc, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, images.perPage, MaxImages)
	assert.Equal(t, strings.Count(doc, "*Photo by ["), MaxImages)
}

func TestGenerateImageFailuresLeaveDocument(t *testing.T) {
	plain, err := NewGenerator(&fakeLLM{replies: []string{testDraft, testMetadata}}, WithClock(fixedClock)).
		Generate(context.Background(), rustRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	panicking := testImages()
	panicking.panics = true
	empty := testImages()
	empty.images = nil
	noCreds := testImages()
	noCreds.creds.SecretKey = ""

	tests := []struct {
		name   string
		images *fakeImages
	}{
		{"search panics", panicking},
		{"no results", empty},
		{"incomplete credentials", noCreds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{replies: []string{testDraft, testMetadata}}
			g := NewGenerator(llm, WithImages(tt.images), WithClock(fixedClock))

			req := rustRequest()
			req.ImageCount = 2
			doc, err := g.Generate(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.Equal(t, doc, plain)
			assert.Equal(t, tt.images.formatted, 0)
		})
	}
}

func TestSpliceImagesWithoutFrontMatter(t *testing.T) {
	blocks := []string{"![a](u)\n\n*Photo by [n](p) on [Unsplash](h)*\n"}
	got := spliceImages("# Title\n\nBody\n", blocks)
	assert.Equal(t, got, blocks[0]+"\n# Title\n\nBody\n")

	assert.Equal(t, spliceImages("doc", nil), "doc")
}
