package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var ErrEmptyResponse = errors.New("no response from language model")

// Completer sends one system + user prompt pair to a chat model and returns
// the reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Client struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewClient builds a chat-completion client. An empty baseURL uses the
// OpenAI endpoint; any OpenAI-compatible server works otherwise. Requests are
// sent once, without retries.
func NewClient(apiKey, baseURL, model string, temperature float64, timeout time.Duration) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &Client{
		client:      &client,
		model:       model,
		temperature: temperature,
	}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// CleanJSON strips a Markdown code fence wrapped around a JSON reply.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
