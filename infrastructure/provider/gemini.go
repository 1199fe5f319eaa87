package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiTimeout = 10 * time.Second
)

// GeminiProvider implements text generation using the Gemini REST API.
type GeminiProvider struct {
	apiKey        string
	baseURL       string
	model         string
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	httpClient    *http.Client
}

// GeminiOption is a functional option for GeminiProvider.
type GeminiOption func(*GeminiProvider)

// WithGeminiBaseURL sets a custom API base URL.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(p *GeminiProvider) { p.baseURL = strings.TrimSuffix(url, "/") }
}

// WithGeminiModel sets the generation model.
func WithGeminiModel(model string) GeminiOption {
	return func(p *GeminiProvider) { p.model = model }
}

// WithGeminiMaxRetries sets the maximum retry count.
func WithGeminiMaxRetries(n int) GeminiOption {
	return func(p *GeminiProvider) { p.maxRetries = n }
}

// WithGeminiTimeout sets the HTTP client timeout.
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(p *GeminiProvider) { p.httpClient.Timeout = d }
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(p *GeminiProvider) { p.httpClient = c }
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:        apiKey,
		baseURL:       defaultGeminiBaseURL,
		model:         defaultGeminiModel,
		maxRetries:    0,
		initialDelay:  time.Second,
		backoffFactor: 2.0,
		httpClient:    &http.Client{Timeout: defaultGeminiTimeout},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// NewGeminiProviderFromConfig creates a provider from configuration.
// Calls are made once by default; MaxRetries > 0 opts in to retries.
func NewGeminiProviderFromConfig(cfg GeminiConfig) *GeminiProvider {
	opts := []GeminiOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithGeminiBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, WithGeminiModel(cfg.Model))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithGeminiTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithGeminiMaxRetries(cfg.MaxRetries))
	}

	p := NewGeminiProvider(cfg.APIKey, opts...)
	if cfg.InitialDelay > 0 {
		p.initialDelay = cfg.InitialDelay
	}
	if cfg.BackoffFactor > 0 {
		p.backoffFactor = cfg.BackoffFactor
	}
	return p
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ThinkingConfig geminiThinkingConfig `json:"thinkingConfig"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SupportsTextGeneration returns true.
func (p *GeminiProvider) SupportsTextGeneration() bool {
	return true
}

// Close is a no-op for the Gemini provider.
func (p *GeminiProvider) Close() error {
	return nil
}

// ChatCompletion generates a completion. Messages are flattened into a
// single prompt part; Gemini's thinking budget stays at zero so short
// explanation calls return promptly.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var prompt strings.Builder
	for _, m := range req.Messages() {
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(m.Content())
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt.String()}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ThinkingConfig: geminiThinkingConfig{ThinkingBudget: 0},
		},
	}

	var resp geminiResponse
	err := p.withRetry(ctx, func() error {
		return p.doRequest(ctx, body, &resp)
	})
	if err != nil {
		return ChatCompletionResponse{}, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return ChatCompletionResponse{}, NewProviderError(
			"chat_completion", 0, "no candidates in response", nil,
		)
	}

	usage := NewUsage(
		resp.UsageMetadata.PromptTokenCount,
		resp.UsageMetadata.CandidatesTokenCount,
		resp.UsageMetadata.TotalTokenCount,
	)

	return NewChatCompletionResponse(
		resp.Candidates[0].Content.Parts[0].Text,
		resp.Candidates[0].FinishReason,
		usage,
	), nil
}

func (p *GeminiProvider) doRequest(ctx context.Context, body geminiRequest, out *geminiResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		message := extractGeminiError(raw)
		return NewProviderError("chat_completion", httpResp.StatusCode, message, nil)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// extractGeminiError pulls a readable message out of an error body.
func extractGeminiError(raw []byte) string {
	var er geminiResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error != nil {
		return er.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// withRetry executes the function with exponential backoff retry.
func (p *GeminiProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryableStatus(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	if p.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Ensure GeminiProvider implements the interface.
var _ TextGenerator = (*GeminiProvider)(nil)
