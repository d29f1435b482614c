package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

// ImageInput is the normalized multimodal image input used by Client.
type ImageInput struct {
	// data:image/...;base64,... or https://...
	ImageURL string
	Detail   string // "low" | "high" | "auto"
}

// Client is the vision/language model surface the backend depends on.
type Client interface {
	// Multimodal: user prompt + images -> plain text
	GenerateTextWithImages(ctx context.Context, system string, user string, images []ImageInput) (string, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

var ErrMissingAPIKey = errors.New("missing extraction api key")

type client struct {
	log   *logger.Logger
	api   *goopenai.Client
	model string
}

// NewClient builds a chat-completions client. Requests are never retried here.
func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	oc := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	log.Info("OpenAI client initialized", "model", model, "base_url", oc.BaseURL, "timeout", timeout.String())
	return &client{
		log:   log.With("client", "OpenAIClient"),
		api:   goopenai.NewClientWithConfig(oc),
		model: model,
	}, nil
}

func (c *client) GenerateTextWithImages(ctx context.Context, system string, user string, images []ImageInput) (string, error) {
	parts := make([]goopenai.ChatMessagePart, 0, 1+len(images))
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: user,
	})
	for _, img := range images {
		u := strings.TrimSpace(img.ImageURL)
		if u == "" {
			continue
		}
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    u,
				Detail: imageDetail(img.Detail),
			},
		})
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:         goopenai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		c.log.Warn("chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}
	c.log.Debug("chat completion done",
		"model", c.model,
		"finish_reason", string(choice.FinishReason),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return choice.Message.Content, nil
}

func imageDetail(d string) goopenai.ImageURLDetail {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "low":
		return goopenai.ImageURLDetailLow
	case "high":
		return goopenai.ImageURLDetailHigh
	default:
		return goopenai.ImageURLDetailAuto
	}
}
