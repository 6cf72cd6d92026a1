package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/autoblogger/internal/config"
	"github.com/julienpequegnot/autoblogger/internal/llm"
	"github.com/julienpequegnot/autoblogger/internal/post"
	"github.com/julienpequegnot/autoblogger/internal/research"
	"github.com/julienpequegnot/autoblogger/internal/unsplash"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a blog post on a topic",
	Long: `Generates a Markdown blog post with YAML front matter.

With --research, reference material is gathered from the configured MCP
servers and feeds first. With --images, header images from Unsplash are
inserted after the front matter.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateOutput      string
	generateLanguage    string
	generateTone        string
	generateLength      string
	generateResearch    bool
	generateAuthor      string
	generateImages      int
	generateModel       string
	generateTemperature float64
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the post to this file instead of stdout")
	generateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "", "Language of the post (default from config)")
	generateCmd.Flags().StringVarP(&generateTone, "tone", "t", "", "Writing tone (default from config)")
	generateCmd.Flags().StringVar(&generateLength, "length", "", "Post length: short, medium or long (default from config)")
	generateCmd.Flags().BoolVarP(&generateResearch, "research", "r", false, "Gather reference material from MCP servers and feeds")
	generateCmd.Flags().StringVarP(&generateAuthor, "author", "a", "", "Author name for the front matter")
	generateCmd.Flags().IntVarP(&generateImages, "images", "i", 0, "Number of Unsplash images to insert (max 3)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Model name (default from config)")
	generateCmd.Flags().Float64Var(&generateTemperature, "temperature", 0, "Sampling temperature (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if generateModel != "" {
		cfg.LLM.Model = generateModel
	}
	if cmd.Flags().Changed("temperature") {
		cfg.LLM.Temperature = generateTemperature
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	req, err := buildRequest(cfg, args[0])
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	logger := slog.Default()
	opts := []post.Option{post.WithLogger(logger)}

	if req.UseResearch {
		agg := newAggregator(cfg, logger)
		if agg.Enabled() {
			opts = append(opts, post.WithResearch(agg))
		} else {
			fmt.Fprintln(os.Stderr, warnStyle.Render("Research requested but no MCP_SERVERS or RESEARCH_FEEDS configured; continuing without it."))
		}
	}

	if req.ImageCount > 0 {
		if cfg.UnsplashEnabled() {
			opts = append(opts, post.WithImages(unsplash.New(unsplash.Credentials{
				ApplicationID: cfg.Unsplash.ApplicationID,
				AccessKey:     cfg.Unsplash.AccessKey,
				SecretKey:     cfg.Unsplash.SecretKey,
			}, unsplash.WithLogger(logger))))
		} else {
			fmt.Fprintln(os.Stderr, warnStyle.Render("Images requested but Unsplash credentials are incomplete; continuing without images."))
		}
	}

	fmt.Fprintln(os.Stderr, panel("Generating blog post", []field{
		{"Topic", req.Topic},
		{"Language", req.Language},
		{"Tone", req.Tone},
		{"Length", fmt.Sprintf("%s (%s)", req.Length, req.Length.Guideline())},
		{"Model", cfg.LLM.Model},
		{"Research", onOff(req.UseResearch)},
		{"Images", strconv.Itoa(min(req.ImageCount, post.MaxImages))},
	}))

	client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Temperature, cfg.Timeout())
	content, err := post.NewGenerator(client, opts...).Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if generateOutput == "" {
		fmt.Println(divider())
		fmt.Println(content)
		fmt.Println(divider())
		return nil
	}

	if dir := filepath.Dir(generateOutput); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(generateOutput, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", generateOutput, err)
	}
	fmt.Fprintln(os.Stderr, successStyle.Render("✓ Blog post saved to "+generateOutput))
	return nil
}

func buildRequest(cfg *config.Config, topic string) (post.Request, error) {
	lengthName := firstSet(generateLength, cfg.Defaults.Length)
	length, err := post.ParseLength(lengthName)
	if err != nil {
		return post.Request{}, err
	}

	return post.Request{
		Topic:       strings.TrimSpace(topic),
		Language:    firstSet(generateLanguage, cfg.Defaults.Language),
		Tone:        firstSet(generateTone, cfg.Defaults.Tone),
		Length:      length,
		UseResearch: generateResearch,
		Author:      firstSet(generateAuthor, cfg.Defaults.Author),
		ImageCount:  generateImages,
	}, nil
}

func newAggregator(cfg *config.Config, logger *slog.Logger) *research.Aggregator {
	agg := &research.Aggregator{
		Servers: cfg.Research.Servers,
		Timeout: cfg.Timeout(),
		Logger:  logger,
	}
	if len(cfg.Research.Feeds) > 0 {
		agg.Feeds = research.NewFeedSource(cfg.Research.Feeds, cfg.Timeout(), cfg.Fetch.UserAgent)
		agg.Feeds.Logger = logger
		agg.Feeds.FullText = cfg.Research.FullText
	}
	return agg
}

func firstSet(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
