package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/recipegen/recipegen/config"
	"go.uber.org/zap"
)

const (
	defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel    = "gpt-3.5-turbo"

	// maxCompletionTokens bounds the length of generated recipes upstream.
	maxCompletionTokens = 1000
)

// OpenAI is the chat-completions adapter: the prompt is sent as a single
// user message and the completion is read from the first choice.
type OpenAI struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewOpenAI creates the chat-completions adapter.
func NewOpenAI(cfg config.ProviderConfig, logger *zap.Logger) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &OpenAI{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   newHTTPClient(),
		logger:   logger,
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiError is the error envelope shared by the OpenAI-style endpoints.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return "", Wrap(fmt.Errorf("encode request: %w", err))
	}

	body, err := doJSON(ctx, o.client, o.endpoint, payload, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	})
	if err != nil {
		o.logger.Warn("openai call failed", zap.Error(err))
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Wrap(fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", Wrap(fmt.Errorf("missing completion text"))
	}

	return resp.Choices[0].Message.Content, nil
}

// doJSON posts a JSON payload and returns the response body, converting
// transport failures and non-2xx statuses into classified errors. The
// upstream error message is folded into the wrapped cause so quota wording
// is visible to classification but never to clients.
func doJSON(ctx context.Context, client *http.Client, endpoint string, payload []byte, decorate func(*http.Request)) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, Wrap(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Wrap(fmt.Errorf("call upstream: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Wrap(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		msg := string(body)
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, Wrap(fmt.Errorf("upstream status %d: %s", resp.StatusCode, msg))
	}

	return body, nil
}
