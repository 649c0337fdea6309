package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/note2tex/internal/budget"
	"github.com/hyperifyio/note2tex/internal/cache"
)

// TextCompleter is the narrow capability the generation, refinement and
// styling steps depend on. *Completer implements it.
type TextCompleter interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// ErrEmptyCompletion is returned when the model answered with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// ErrNotConfigured is returned when no client or model is available.
var ErrNotConfigured = errors.New("completer not configured")

const (
	defaultMaxTries       = 5
	defaultInitialBackoff = time.Second
	defaultMaxElapsed     = 5 * time.Minute
	defaultTemperature    = 0.2
	defaultTopP           = 0.9
	defaultMaxTokens      = 4096
)

// Completer turns a system and user prompt into text. Transient transport
// failures are retried with exponential backoff and jitter; after MaxTries
// the last error is returned and the caller decides how to degrade.
type Completer struct {
	Client Client
	// Model is used when a call does not name one.
	Model string
	// MaxTries bounds attempts per call, including the first. Zero means 5.
	MaxTries uint
	// InitialBackoff is the first retry delay. Zero means one second.
	InitialBackoff time.Duration
	// Temperature overrides the default sampling temperature when > 0.
	Temperature float32
	// MaxTokens caps the completion length. Zero means 4096.
	MaxTokens int
	Cache     *cache.LLMCache
	// CacheOnly, when true, returns from cache and fails fast if missing.
	CacheOnly bool
}

// Complete runs one chat completion. model may be empty to use c.Model.
func (c *Completer) Complete(ctx context.Context, model, system, user string) (string, error) {
	if c == nil || c.Client == nil {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(model) == "" {
		model = c.Model
	}
	if strings.TrimSpace(model) == "" {
		return "", ErrNotConfigured
	}

	key := cache.KeyFrom(model, system+"\n\n"+user)
	if c.Cache != nil {
		if e, ok := c.Cache.Lookup(ctx, key); ok {
			log.Debug().Str("model", model).Msg("llm cache hit")
			return e.Text, nil
		}
	}
	if c.CacheOnly {
		return "", fmt.Errorf("cache-only: %w", ErrEmptyCompletion)
	}

	maxTokens, fits := budget.OutputTokens(model, system, user, c.maxTokens())
	if !fits {
		log.Warn().Str("model", model).Int("context", budget.ContextTokens(model)).Int("max_tokens", maxTokens).Msg("prompt crowds the context window; completion budget reduced")
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature(),
		TopP:        defaultTopP,
		MaxTokens:   maxTokens,
		N:           1,
	}
	log.Debug().Str("model", model).Int("system_len", len(system)).Int("user_len", len(user)).Msg("llm request")

	op := func() (string, error) {
		resp, err := c.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			if !retryable(ctx, err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(ErrEmptyCompletion)
		}
		out := strings.TrimSpace(resp.Choices[0].Message.Content)
		if out == "" {
			return "", backoff.Permanent(ErrEmptyCompletion)
		}
		return out, nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("model", model).Dur("wait", wait).Msg("llm call failed; retrying")
	}
	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.maxTries()),
		backoff.WithMaxElapsedTime(defaultMaxElapsed),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}

	if c.Cache != nil {
		if err := c.Cache.Store(ctx, key, cache.Entry{Model: model, Text: out}); err != nil {
			log.Debug().Err(err).Msg("llm cache save failed")
		}
	}
	return out, nil
}

func (c *Completer) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultInitialBackoff
	if c.InitialBackoff > 0 {
		b.InitialInterval = c.InitialBackoff
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	return b
}

func (c *Completer) maxTries() uint {
	if c.MaxTries == 0 {
		return defaultMaxTries
	}
	return c.MaxTries
}

func (c *Completer) temperature() float32 {
	if c.Temperature > 0 {
		return c.Temperature
	}
	return defaultTemperature
}

func (c *Completer) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

// retryable separates throttling and server faults from errors that will
// not change on a second attempt.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return true
}
