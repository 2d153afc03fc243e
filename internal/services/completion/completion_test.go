package completion_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/domain/models"
	"github.com/havenmind/support-service/internal/services/completion"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
	prompt   string
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.calls++
	p.prompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func TestGenerate_FirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "first", response: "that sounds really hard"}
	second := &stubProvider{name: "second", response: "unused"}
	chain := completion.NewChain(first, second)

	response, err := chain.Generate(context.Background(), "rough week", nil)
	require.NoError(t, err)
	assert.Equal(t, "that sounds really hard", response)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestGenerate_FallsThroughOnError(t *testing.T) {
	first := &stubProvider{name: "first", err: fmt.Errorf("upstream 503")}
	second := &stubProvider{name: "second", response: "I hear you"}
	chain := completion.NewChain(first, second)

	response, err := chain.Generate(context.Background(), "rough week", nil)
	require.NoError(t, err)
	assert.Equal(t, "I hear you", response)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestGenerate_SkipsEmptyResponses(t *testing.T) {
	first := &stubProvider{name: "first", response: "   \n"}
	second := &stubProvider{name: "second", response: "  trimmed  "}
	chain := completion.NewChain(first, second)

	response, err := chain.Generate(context.Background(), "rough week", nil)
	require.NoError(t, err)
	assert.Equal(t, "trimmed", response)
}

func TestGenerate_AllProvidersFail(t *testing.T) {
	first := &stubProvider{name: "first", err: fmt.Errorf("timeout")}
	second := &stubProvider{name: "second", err: fmt.Errorf("rate limited")}
	chain := completion.NewChain(first, second)

	_, err := chain.Generate(context.Background(), "rough week", nil)
	require.Error(t, err)

	domainErr, ok := errors.GetDomainError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, domainErr.Code)
}

func TestGenerate_EmptyChain(t *testing.T) {
	chain := completion.NewChain()

	_, err := chain.Generate(context.Background(), "rough week", nil)
	require.Error(t, err)

	domainErr, ok := errors.GetDomainError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeServiceUnavailable, domainErr.Code)
}

func TestNewChain_DropsNilProviders(t *testing.T) {
	first := &stubProvider{name: "first", response: "ok"}
	chain := completion.NewChain(nil, first, nil)

	assert.Equal(t, []string{"first"}, chain.Providers())
}

func TestGenerate_PromptCarriesHistory(t *testing.T) {
	provider := &stubProvider{name: "only", response: "ok"}
	chain := completion.NewChain(provider)

	history := []models.Exchange{
		{Prompt: "I had a bad day", Response: "Tell me more about it"},
	}
	_, err := chain.Generate(context.Background(), "work was awful", history)
	require.NoError(t, err)

	assert.Contains(t, provider.prompt, "Recent conversation:")
	assert.Contains(t, provider.prompt, "User: I had a bad day")
	assert.Contains(t, provider.prompt, "You: Tell me more about it")
	assert.True(t, strings.HasSuffix(provider.prompt, "User: work was awful\nYou:"))
}

func TestBuildPrompt_NoHistory(t *testing.T) {
	prompt := completion.BuildPrompt("hello", nil)

	assert.NotContains(t, prompt, "Recent conversation:")
	assert.True(t, strings.HasSuffix(prompt, "User: hello\nYou:"))
}
