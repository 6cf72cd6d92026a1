// Package post turns a topic into a finished Markdown blog post: optional
// research, a draft from the language model, SEO front matter and header
// images.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/julienpequegnot/autoblogger/internal/llm"
	"github.com/julienpequegnot/autoblogger/internal/research"
	"github.com/julienpequegnot/autoblogger/internal/unsplash"
)

// ErrDraft wraps any failure of the draft generation call, the only fatal
// phase of a run.
var ErrDraft = errors.New("content generation failed")

// Researcher gathers references for a topic.
type Researcher interface {
	Enabled() bool
	Gather(ctx context.Context, topic string) []research.Reference
}

type Generator struct {
	llm      llm.Completer
	research Researcher
	images   ImageSource
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Generator)

func WithResearch(r Researcher) Option {
	return func(g *Generator) { g.research = r }
}

func WithImages(s ImageSource) Option {
	return func(g *Generator) { g.images = s }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(completer llm.Completer, opts ...Option) *Generator {
	g := &Generator{
		llm:    completer,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the whole pipeline. Only a failed draft call returns an
// error; research, metadata and images degrade to defaults.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	log := g.logger.With("run_id", uuid.NewString(), "topic", req.Topic)

	researchContext := ""
	if req.UseResearch {
		researchContext = g.gatherResearch(ctx, log, req.Topic)
	}

	system, user := draftPrompts(req, researchContext)
	log.Info("generating draft", "language", req.Language, "length", string(req.Length), "research", researchContext != "")
	draft, err := g.llm.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDraft, err)
	}

	meta := g.metadata(ctx, log, req, draft)
	doc := renderFrontMatter(req.Topic, req.Author, req.Language, g.now(), meta) + draft

	if req.ImageCount > 0 {
		doc = g.addImages(ctx, log, req, doc)
	}
	return doc, nil
}

func (g *Generator) gatherResearch(ctx context.Context, log *slog.Logger, topic string) (block string) {
	if g.research == nil || !g.research.Enabled() {
		log.Debug("research requested but no sources configured")
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn("could not gather research materials", "error", fmt.Sprint(r))
			block = ""
		}
	}()

	refs := g.research.Gather(ctx, topic)
	log.Info("research gathered", "references", len(refs))
	return research.FormatReferences(refs)
}

func (g *Generator) metadata(ctx context.Context, log *slog.Logger, req Request, draft string) Metadata {
	system, user := metadataPrompts(draft, req.Language)
	reply, err := g.llm.Complete(ctx, system, user)
	if err != nil {
		log.Warn("metadata generation failed, using defaults", "error", err)
		return fallbackMetadata(req.Topic)
	}

	meta, err := parseMetadata(reply, req.Topic)
	if err != nil {
		log.Warn("could not parse metadata, using defaults", "error", err)
		return fallbackMetadata(req.Topic)
	}
	return meta
}

func (g *Generator) addImages(ctx context.Context, log *slog.Logger, req Request, doc string) (out string) {
	if g.images == nil || !g.images.Credentials().Complete() {
		log.Warn("images requested but unsplash credentials are incomplete")
		return doc
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warn("could not add images", "error", fmt.Sprint(r))
			out = doc
		}
	}()

	photos := g.images.SearchPhotos(ctx, req.Topic, min(req.ImageCount, MaxImages), unsplash.Landscape)
	if len(photos) == 0 {
		log.Warn("no images found", "query", req.Topic)
		return doc
	}

	blocks := make([]string, 0, len(photos))
	for _, p := range photos {
		blocks = append(blocks, g.images.FormatMarkdownImage(ctx, p))
	}
	log.Info("images added", "count", len(blocks))
	return spliceImages(doc, blocks)
}
