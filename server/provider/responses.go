package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/recipegen/recipegen/config"
	"go.uber.org/zap"
)

const (
	defaultResponsesEndpoint = "https://api.openai.com/v1/responses"
	defaultResponsesModel    = "gpt-4.1-mini"
)

// OpenAIResponses is the single-turn responses-API adapter: the prompt goes
// up as the input field and the completion comes back as output text.
type OpenAIResponses struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewOpenAIResponses creates the responses-API adapter.
func NewOpenAIResponses(cfg config.ProviderConfig, logger *zap.Logger) *OpenAIResponses {
	model := cfg.Model
	if model == "" {
		model = defaultResponsesModel
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultResponsesEndpoint
	}
	return &OpenAIResponses{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   newHTTPClient(),
		logger:   logger,
	}
}

// Name implements Provider.
func (o *OpenAIResponses) Name() string { return "openai-responses" }

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResponse struct {
	// OutputText is the aggregated convenience field; not every response
	// carries it, so the structured output is the fallback.
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// Generate implements Provider.
func (o *OpenAIResponses) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(responsesRequest{
		Model: o.model,
		Input: prompt,
	})
	if err != nil {
		return "", Wrap(fmt.Errorf("encode request: %w", err))
	}

	body, err := doJSON(ctx, o.client, o.endpoint, payload, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	})
	if err != nil {
		o.logger.Warn("openai responses call failed", zap.Error(err))
		return "", err
	}

	var resp responsesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Wrap(fmt.Errorf("decode response: %w", err))
	}

	if resp.OutputText != "" {
		return resp.OutputText, nil
	}
	for _, out := range resp.Output {
		if out.Type != "message" {
			continue
		}
		for _, c := range out.Content {
			if c.Type == "output_text" && c.Text != "" {
				return c.Text, nil
			}
		}
	}

	return "", Wrap(fmt.Errorf("missing completion text"))
}
