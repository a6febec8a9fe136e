// Package gemini implements provider.Translator on top of the Gemini API,
// for installations that prefer their own Google AI quota over the hosted
// Algebras endpoint.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/httpclient"
	"github.com/irakli/algebras-go/internal/langcode"
	"github.com/irakli/algebras-go/internal/logger"
	"github.com/irakli/algebras-go/internal/normalizer"
	"github.com/irakli/algebras-go/internal/provider"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client handles communication with the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

var _ provider.Translator = (*Client)(nil)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	// option.WithHTTPClient interferes with the genai library's internal
	// header injection for API keys; timeouts are enforced via context in
	// each call instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Client{client: client, model: modelName}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

func systemInstruction(sourceLang, targetLang string, opts provider.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional %s to %s translator for software localization strings.
Translate the 'text' of every unit in the input JSON into %s.

Rules:
- The output MUST be a JSON object with a 'translations' field: an array of objects with 'id' (copied from the input unit) and 'text' (the translation).
- Respond ONLY with the JSON object.
- Preserve placeholders, markup and formatting tokens exactly as they appear.
- Keep the original tone.
`, langcode.DisplayName(sourceLang), langcode.DisplayName(targetLang), langcode.DisplayName(targetLang))
	if opts.UISafe {
		b.WriteString("- Keep each translation no longer than its source text; these strings render in fixed-width UI elements.\n")
	}
	if opts.Prompt != "" {
		b.WriteString("\nAdditional instructions:\n")
		b.WriteString(opts.Prompt)
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Client) generativeModel(sourceLang, targetLang string, opts provider.Options) *genai.GenerativeModel {
	// A fresh model value per call: batches for different language pairs can
	// be in flight at once, so shared mutable model state is off the table.
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction(sourceLang, targetLang, opts))},
	}
	return model
}

func (c *Client) TranslateBatch(ctx context.Context, units []provider.Unit, sourceLang, targetLang string, opts provider.Options) ([]provider.Result, error) {
	if opts.GlossaryID != "" {
		logger.Warn("Glossary is ineffective in batch mode and will be ignored", "target", targetLang)
	}

	req := requestData{Units: make([]unitData, len(units))}
	for i, u := range units {
		req.Units[i] = unitData{ID: i, Text: u.Text}
	}

	resp, err := c.generate(ctx, sourceLang, targetLang, opts, req)
	if err != nil {
		return nil, err
	}

	// One result per requested unit; units the model dropped are marked
	// failed rather than shifting later slots.
	bySlot := make(map[int]string, len(resp.Translations))
	for _, tr := range resp.Translations {
		if tr.ID < 0 || tr.ID >= len(units) {
			logger.Warn("Discarding translation with out-of-range id", "id", tr.ID, "units", len(units))
			continue
		}
		bySlot[tr.ID] = tr.Text
	}

	results := make([]provider.Result, len(units))
	for i, u := range units {
		text, ok := bySlot[i]
		if !ok || text == "" {
			results[i] = provider.Result{Key: u.Key, Err: "no translation returned"}
			continue
		}
		results[i] = provider.Result{
			Key:        u.Key,
			Translated: normalizer.Normalize(u.Text, text, opts.Normalize),
			Confidence: 1,
		}
	}
	return results, nil
}

func (c *Client) TranslateSingle(ctx context.Context, unit provider.Unit, sourceLang, targetLang string, opts provider.Options) (provider.Result, error) {
	if opts.GlossaryID != "" {
		logger.Warn("Gemini provider does not support glossaries; glossary id ignored", "glossary_id", opts.GlossaryID)
	}

	results, err := c.TranslateBatch(ctx, []provider.Unit{unit}, sourceLang, targetLang, opts)
	if err != nil {
		return provider.Result{}, err
	}
	return results[0], nil
}

func (c *Client) generate(ctx context.Context, sourceLang, targetLang string, opts provider.Options, req requestData) (*responseData, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	model := c.generativeModel(sourceLang, targetLang, opts)
	resp, err := model.GenerateContent(ctx, genai.Text(string(requestJSON)))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return nil, apperrors.Validation(err)
	}

	var responseJSON responseData
	if err := json.Unmarshal([]byte(text), &responseJSON); err != nil {
		// Fallback: some models respond with a bare array.
		var units []translatedUnit
		if err2 := json.Unmarshal([]byte(text), &units); err2 == nil {
			responseJSON.Translations = units
		} else {
			return nil, apperrors.Validation(fmt.Errorf("failed to unmarshal response: %w", err))
		}
	}
	return &responseJSON, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var combined string
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			combined += string(text)
		}
		if combined != "" {
			return combined, nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
