// Package validation implements the prompt validator for incoming recipe
// requests. It enforces the structural contract of the request body before
// any cache or provider access: the prompt must be present, a JSON string,
// at most MaxPromptChars characters, and non-empty after trimming.
//
// Validation is pure; it never touches the network or the cache. The prompt
// is returned exactly as received; trimming is only applied for the
// emptiness check, never to the value used downstream as the cache key.
package validation

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkoukk/tiktoken-go"
	"github.com/recipegen/recipegen/errors"
	"go.uber.org/zap"
)

// MaxPromptChars bounds prompt length, counted in characters rather than bytes.
const MaxPromptChars = 2000

// Client-visible messages for prompt validation failures.
const (
	MsgInvalidBody   = "Invalid request body"
	MsgInvalidPrompt = "Invalid prompt"
	MsgPromptMissing = "Prompt is required"
	MsgPromptTooLong = "Prompt must be 2000 characters or fewer"
	MsgPromptEmpty   = "Prompt must not be empty"
)

// RecipeRequest is the expected schema of the request body. The pointer
// distinguishes an absent prompt from an empty one.
type RecipeRequest struct {
	Prompt *string `json:"prompt" validate:"required,max=2000"`
}

// Validator checks request bodies against the RecipeRequest schema and
// counts prompt tokens for observability. Token counts never influence
// admission; the length limit is character-based.
type Validator struct {
	validate  *validator.Validate
	tokenizer *tiktoken.Tiktoken
	logger    *zap.Logger
}

// New creates a Validator. The tokenizer is best-effort: if the encoding
// cannot be loaded, token counting is disabled and validation proceeds
// without it.
func New(logger *zap.Logger) *Validator {
	v := &Validator{
		validate: validator.New(),
		logger:   logger,
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tokenizer unavailable, prompt token metrics disabled", zap.Error(err))
	} else {
		v.tokenizer = enc
	}

	return v
}

// ValidatePrompt parses and validates a request body, returning the prompt
// exactly as received or a typed validation error with a field-specific
// message. Checks run in a fixed order: body shape, presence, length,
// then emptiness after trimming.
func (v *Validator) ValidatePrompt(requestID string, body []byte) (string, *errors.GatewayError) {
	var req RecipeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		if _, ok := err.(*json.UnmarshalTypeError); ok {
			return "", errors.NewValidationError(requestID, MsgInvalidPrompt)
		}
		return "", errors.NewValidationError(requestID, MsgInvalidBody)
	}

	if err := v.validate.Struct(req); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok || len(validationErrs) == 0 {
			return "", errors.NewValidationError(requestID, MsgInvalidPrompt)
		}
		switch validationErrs[0].Tag() {
		case "required":
			return "", errors.NewValidationError(requestID, MsgPromptMissing)
		case "max":
			return "", errors.NewValidationError(requestID, MsgPromptTooLong)
		default:
			return "", errors.NewValidationError(requestID, MsgInvalidPrompt)
		}
	}

	if strings.TrimSpace(*req.Prompt) == "" {
		return "", errors.NewValidationError(requestID, MsgPromptEmpty)
	}

	return *req.Prompt, nil
}

// CountTokens returns the token count of text, or 0 when the tokenizer is
// unavailable.
func (v *Validator) CountTokens(text string) int {
	if v.tokenizer == nil {
		return 0
	}
	return len(v.tokenizer.Encode(text, nil, nil))
}
