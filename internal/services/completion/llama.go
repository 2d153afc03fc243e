package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const llamaBaseURL = "https://api-inference.huggingface.co/models"

// LlamaConfig holds the configuration for the Llama provider.
type LlamaConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// LlamaProvider calls a hosted Llama model through the Hugging Face
// inference API. It is the last resort in the chain.
type LlamaProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type llamaRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters llamaParameters `json:"parameters"`
}

type llamaParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type llamaGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// NewLlamaProvider creates a new Llama provider.
func NewLlamaProvider(config *LlamaConfig) (*LlamaProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	model := config.Model
	if model == "" {
		model = "meta-llama/Llama-2-7b-chat-hf"
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = llamaBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &LlamaProvider{
		apiKey:     config.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// Name identifies the provider.
func (p *LlamaProvider) Name() string {
	return "llama"
}

// Complete sends the prompt to the inference endpoint and returns the
// generated continuation.
func (p *LlamaProvider) Complete(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s", p.baseURL, p.model)

	body, err := json.Marshal(llamaRequest{
		Inputs: prompt,
		Parameters: llamaParameters{
			MaxNewTokens:   512,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var generations []llamaGeneration
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(generations) == 0 {
		return "", fmt.Errorf("response contained no generations")
	}

	return generations[0].GeneratedText, nil
}
