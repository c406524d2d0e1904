// Package tutor asks a chat-completion model for short commentary on the
// current position. Advice is decorative: a failed request comes back as a
// degraded Advice, never as an error the caller has to handle.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 30 * time.Second
	DefaultTemperature = 0.7
)

var (
	ErrNoAPIKey  = errors.New("tutor: no API key configured")
	ErrNoContent = errors.New("tutor: no content returned")
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	History     int // plies of history in the prompt
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Advice is the outcome of one request. Err is set when the text could not
// be obtained; Text is then empty.
type Advice struct {
	Text      string
	Err       error
	RequestID string
}

func (a Advice) Degraded() bool {
	return a.Err != nil
}

type Client struct {
	api *openai.Client
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, logger zerolog.Logger) *Client {
	cfg = cfg.withDefaults()

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
		log: logger,
	}
}

func (c *Client) Advise(ctx context.Context, req Request) Advice {
	id := uuid.NewString()
	log := c.log.With().Str("request", id).Logger()

	if c.cfg.APIKey == "" {
		return Advice{Err: ErrNoAPIKey, RequestID: id}
	}

	if req.Window == 0 {
		req.Window = c.cfg.History
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    Messages(req),
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.Error().Int("status", apiErr.HTTPStatusCode).Str("model", c.cfg.Model).Msg(apiErr.Message)
		} else {
			log.Error().Err(err).Str("model", c.cfg.Model).Msg("advice request failed")
		}
		return Advice{Err: fmt.Errorf("tutor: %w", err), RequestID: id}
	}

	if len(resp.Choices) == 0 {
		return Advice{Err: ErrNoContent, RequestID: id}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Advice{Err: ErrNoContent, RequestID: id}
	}

	log.Debug().Dur("took", time.Since(start)).Int("tokens", resp.Usage.TotalTokens).Msg("advice received")
	return Advice{Text: text, RequestID: id}
}
