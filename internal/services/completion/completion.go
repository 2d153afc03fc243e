// Package completion generates supportive therapist-style responses from
// external model providers, with an ordered fallback chain so a single
// provider outage does not take the conversational surface down.
package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
)

// therapistPreamble frames every provider call. The classifier screens
// crisis disclosures before this path runs, so the prompt focuses on
// supportive conversation rather than risk triage.
const therapistPreamble = `You are a compassionate mental health support companion. Listen with empathy, validate the person's feelings, and respond in a warm, non-judgmental tone. Keep responses concise and conversational. Encourage healthy coping strategies, and gently suggest professional support when the conversation warrants it. Never diagnose, never prescribe.`

// Provider produces a completion for a prompt. Implementations wrap one
// external model API.
type Provider interface {
	// Name identifies the provider in logs and diagnostics.
	Name() string

	// Complete returns the model's response for the prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chain tries each configured provider in order and returns the first
// successful completion.
type Chain struct {
	providers []Provider
}

// NewChain creates a provider chain. Order matters: providers are tried
// front to back. An empty chain is allowed so the service can run
// without model credentials; generation then fails with a service
// unavailable error.
func NewChain(providers ...Provider) *Chain {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Chain{providers: active}
}

// Providers returns the names of the configured providers in chain order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate builds the therapist prompt from the user's message and the
// recent exchange history, then walks the chain. The error from the last
// provider is returned when every provider fails.
func (c *Chain) Generate(ctx context.Context, message string, history []models.Exchange) (string, error) {
	if len(c.providers) == 0 {
		return "", errors.NewServiceUnavailableError("completion providers",
			fmt.Errorf("no providers configured"))
	}

	prompt := BuildPrompt(message, history)

	var lastErr error
	for _, p := range c.providers {
		response, err := p.Complete(ctx, prompt)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).
				Msg("completion provider failed, trying next in chain")
			lastErr = err
			continue
		}

		response = strings.TrimSpace(response)
		if response == "" {
			log.Warn().Str("provider", p.Name()).
				Msg("completion provider returned an empty response, trying next in chain")
			lastErr = fmt.Errorf("provider %s returned an empty response", p.Name())
			continue
		}

		return response, nil
	}

	return "", errors.NewServiceUnavailableError("completion providers", lastErr)
}

// BuildPrompt assembles the provider prompt: preamble, recent history,
// then the current message.
func BuildPrompt(message string, history []models.Exchange) string {
	var b strings.Builder
	b.WriteString(therapistPreamble)

	if len(history) > 0 {
		b.WriteString("\n\nRecent conversation:\n")
		for _, ex := range history {
			fmt.Fprintf(&b, "User: %s\nYou: %s\n", ex.Prompt, ex.Response)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\nYou:", message)
	return b.String()
}
