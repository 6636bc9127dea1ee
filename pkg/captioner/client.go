// Package captioner generates candidate caption lines for a clip through
// an OpenAI-compatible chat endpoint.
package captioner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelsmith/internal/types"
	apperrors "reelsmith/pkg/errors"

	"github.com/sashabaranov/go-openai"
)

const defaultCandidateCount = 8

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, proxyAddr, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	transport := &http.Transport{}
	if proxyAddr != "" {
		if proxyURL, err := url.Parse(proxyAddr); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	cfg.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Candidates asks the model for req.Count caption options. The response is
// parsed leniently: out-of-order option lines are reordered, malformed
// lines are dropped, and missing slots are padded with placeholder text so
// the caller always receives exactly req.Count entries.
func (c *Client) Candidates(ctx context.Context, req types.CaptionRequest) ([]string, error) {
	count := req.Count
	if count <= 0 {
		count = defaultCandidateCount
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.35,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(req.Topic, req.Hint, count),
			},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.CodeCaptionTimeout, "Caption request cancelled", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeCaptionFailed, "Caption request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.New(apperrors.CodeCaptionFailed, "Caption service returned no choices")
	}

	return ParseOptions(resp.Choices[0].Message.Content, count), nil
}

const systemPrompt = "You write short, punchy captions for vertical short-form videos. " +
	"Every caption must be 5-25 words, readable at a glance, brand-safe, and free of political content or slurs. " +
	"Vary the comedic angle across options and avoid generic meme openers."

func buildPrompt(topic, hint string, count int) string {
	var b strings.Builder

	templates := make([]string, count)
	for i := range templates {
		templates[i] = fmt.Sprintf("Option %d: ...", i+1)
	}

	fmt.Fprintf(&b, "Write %d caption options for a short vertical video.\n", count)
	if topic != "" {
		fmt.Fprintf(&b, "\nTOPIC (niche phrase, may include style tags):\n%s\n", topic)
	}
	if hint != "" {
		fmt.Fprintf(&b, "\nCLIP CONTEXT:\n%s\n", hint)
	}
	fmt.Fprintf(&b, "\nOutput EXACTLY %d captions in this exact format (one per line):\n%s\n",
		count, strings.Join(templates, "\n"))
	return b.String()
}
