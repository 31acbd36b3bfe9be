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
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-1.5-flash"
)

// Gemini is the generative-content adapter: the prompt is sent as a single
// content part and the completion is read from the first candidate.
type Gemini struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewGemini creates the Gemini adapter. cfg.Endpoint, when set, overrides
// the API base URL, not the full method path.
func NewGemini(cfg config.ProviderConfig, logger *zap.Logger) *Gemini {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	return &Gemini{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   newHTTPClient(),
		logger:   logger,
	}
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	})
	if err != nil {
		return "", Wrap(fmt.Errorf("encode request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
	body, err := doJSON(ctx, g.client, url, payload, func(req *http.Request) {
		req.Header.Set("x-goog-api-key", g.apiKey)
	})
	if err != nil {
		g.logger.Warn("gemini call failed", zap.Error(err))
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Wrap(fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 ||
		resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", Wrap(fmt.Errorf("missing completion text"))
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
