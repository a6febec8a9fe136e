// Package algebras is the HTTP client for the Algebras translation API.
package algebras

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/httpclient"
	"github.com/irakli/algebras-go/internal/logger"
	"github.com/irakli/algebras-go/internal/normalizer"
	"github.com/irakli/algebras-go/internal/provider"
)

const defaultBaseURL = "https://platform.algebras.ai/api/v1"

// batchRequest is the wire shape of one batch translation call. Texts are
// positional; the response aligns by slot.
type batchRequest struct {
	SourceLanguage string            `json:"sourceLanguage"`
	TargetLanguage string            `json:"targetLanguage"`
	Texts          []string          `json:"texts"`
	Prompt         string            `json:"prompt,omitempty"`
	UISafe         bool              `json:"uiSafe,omitempty"`
	Tuning         map[string]string `json:"tuning,omitempty"`
	Model          string            `json:"model,omitempty"`
}

type singleRequest struct {
	SourceLanguage string            `json:"sourceLanguage"`
	TargetLanguage string            `json:"targetLanguage"`
	Text           string            `json:"text"`
	Prompt         string            `json:"prompt,omitempty"`
	UISafe         bool              `json:"uiSafe,omitempty"`
	GlossaryID     string            `json:"glossaryId,omitempty"`
	Tuning         map[string]string `json:"tuning,omitempty"`
	Model          string            `json:"model,omitempty"`
}

type translation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

type batchResponse struct {
	Translations []translation `json:"translations"`
}

type singleResponse struct {
	Translation translation `json:"translation"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Client implements provider.Translator against the Algebras API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
}

var _ provider.Translator = (*Client)(nil)

// NewClient creates a client. model may be empty to use the provider default.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
	}
}

func (c *Client) TranslateBatch(ctx context.Context, units []provider.Unit, sourceLang, targetLang string, opts provider.Options) ([]provider.Result, error) {
	if opts.GlossaryID != "" {
		// Glossaries only apply to single-item calls; dropping one silently
		// would hide a misconfiguration.
		logger.Warn("Glossary is ineffective in batch mode and will be ignored", "target", targetLang)
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	req := batchRequest{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Texts:          texts,
		Prompt:         opts.Prompt,
		UISafe:         opts.UISafe,
		Tuning:         opts.Tuning,
		Model:          c.model,
	}

	var resp batchResponse
	if err := c.post(ctx, "/translation/translate/batch", req, &resp); err != nil {
		return nil, err
	}

	results := make([]provider.Result, 0, len(resp.Translations))
	for i, tr := range resp.Translations {
		r := provider.Result{
			Translated: tr.Text,
			Confidence: tr.Confidence,
			Err:        tr.Error,
		}
		// Alignment with the request is positional; a response longer than
		// the request carries slots we cannot attribute to any unit.
		if i < len(units) {
			r.Key = units[i].Key
			r.Translated = normalizer.Normalize(units[i].Text, r.Translated, opts.Normalize)
		}
		results = append(results, r)
	}
	if len(results) > len(units) {
		logger.Warn("Provider returned more results than requested; dropping extras",
			"requested", len(units), "returned", len(results))
		results = results[:len(units)]
	}
	return results, nil
}

func (c *Client) TranslateSingle(ctx context.Context, unit provider.Unit, sourceLang, targetLang string, opts provider.Options) (provider.Result, error) {
	req := singleRequest{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Text:           unit.Text,
		Prompt:         opts.Prompt,
		UISafe:         opts.UISafe,
		GlossaryID:     opts.GlossaryID,
		Tuning:         opts.Tuning,
		Model:          c.model,
	}

	var resp singleResponse
	if err := c.post(ctx, "/translation/translate", req, &resp); err != nil {
		return provider.Result{}, err
	}

	return provider.Result{
		Key:        unit.Key,
		Translated: normalizer.Normalize(unit.Text, resp.Translation.Text, opts.Normalize),
		Confidence: resp.Translation.Confidence,
		Err:        resp.Translation.Error,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	client := httpclient.GetDefaultClient()
	body, resp, err := httpclient.DoAndRead(client, httpReq)
	if err != nil {
		return apperrors.New(
			apperrors.KindTransient,
			"Algebras request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return classifyHTTPError(resp.StatusCode, resp.Status, parseErrorDetails(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.New(
			apperrors.KindValidation,
			"Algebras response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}

	logger.Debug("Algebras API response", "status", resp.Status, "path", path)
	return nil
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}

func classifyHTTPError(statusCode int, status string, details errorDetails) error {
	cause := fmt.Errorf("algebras status=%s code=%s message=%s", status, details.Code, details.Message)

	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			"Algebras API rate limit exceeded (429): please try again later.",
			cause,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("Algebras API authentication/authorization failed (%d): please verify your API key.", statusCode),
			cause,
		)
	case http.StatusNotFound:
		return apperrors.New(
			apperrors.KindBadRequest,
			"Algebras resource not found (404).",
			cause,
		)
	default:
		if statusCode >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("Algebras server error (%d): please try again later.", statusCode),
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("Algebras API error (%d): %s", statusCode, status),
			cause,
		)
	}
}
