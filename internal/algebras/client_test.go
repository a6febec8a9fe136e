package algebras

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/irakli/algebras-go/internal/apperrors"
	"github.com/irakli/algebras-go/internal/provider"
)

func TestClient_TranslateBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translation/translate/batch" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q", got)
		}
		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := batchResponse{}
		for _, text := range req.Texts {
			resp.Translations = append(resp.Translations, translation{
				Text:       text + "_" + req.TargetLanguage,
				Confidence: 0.9,
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.baseURL = server.URL

	units := []provider.Unit{{Key: "greet", Text: "Hello"}, {Key: "farewell", Text: "Bye"}}
	results, err := client.TranslateBatch(context.Background(), units, "en", "es", provider.Options{})
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Key != "greet" || results[0].Translated != "Hello_es" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Confidence != 0.9 {
		t.Errorf("results[1].Confidence = %v", results[1].Confidence)
	}
}

func TestClient_TranslateBatch_AppliesNormalizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchResponse{
			Translations: []translation{{Text: `C\'est`, Confidence: 1}},
		})
	}))
	defer server.Close()

	client := NewClient("k", "")
	client.baseURL = server.URL

	units := []provider.Unit{{Key: "greet", Text: "It's"}}
	results, err := client.TranslateBatch(context.Background(), units, "en", "fr", provider.Options{Normalize: true})
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if results[0].Translated != "C'est" {
		t.Errorf("Translated = %q, want C'est", results[0].Translated)
	}
}

func TestClient_TranslateSingle_CarriesGlossary(t *testing.T) {
	var seen singleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translation/translate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(singleResponse{Translation: translation{Text: "Hola", Confidence: 0.8}})
	}))
	defer server.Close()

	client := NewClient("k", "")
	client.baseURL = server.URL

	result, err := client.TranslateSingle(context.Background(),
		provider.Unit{Key: "greet", Text: "Hello"}, "en", "es",
		provider.Options{GlossaryID: "g-42"})
	if err != nil {
		t.Fatalf("TranslateSingle: %v", err)
	}
	if seen.GlossaryID != "g-42" {
		t.Errorf("request glossaryId = %q, want g-42", seen.GlossaryID)
	}
	if result.Translated != "Hola" || result.Key != "greet" {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		responseBody string
		wantKind     apperrors.Kind
		wantMsgPart  string
	}{
		{
			name:         "429 RateLimit",
			status:       http.StatusTooManyRequests,
			responseBody: `{"error": {"message": "slow down SECRET_SOURCE_TEXT", "code": "rate_limited"}}`,
			wantKind:     apperrors.KindRateLimit,
			wantMsgPart:  "rate limit exceeded (429)",
		},
		{
			name:         "401 Auth",
			status:       http.StatusUnauthorized,
			responseBody: `{"error": {"message": "bad key SECRET_SOURCE_TEXT"}}`,
			wantKind:     apperrors.KindAuth,
			wantMsgPart:  "authentication/authorization failed (401)",
		},
		{
			name:         "500 Transient",
			status:       http.StatusInternalServerError,
			responseBody: "boom SECRET_SOURCE_TEXT",
			wantKind:     apperrors.KindTransient,
			wantMsgPart:  "server error (500)",
		},
		{
			name:         "400 BadRequest",
			status:       http.StatusBadRequest,
			responseBody: `{"error": {"message": "invalid SECRET_SOURCE_TEXT"}}`,
			wantKind:     apperrors.KindBadRequest,
			wantMsgPart:  "API error (400)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.responseBody)
			}))
			defer server.Close()

			client := NewClient("k", "")
			client.baseURL = server.URL

			_, err := client.TranslateBatch(context.Background(),
				[]provider.Unit{{Key: "a", Text: "hi"}}, "en", "es", provider.Options{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			kind, ok := apperrors.KindOf(err)
			if !ok || kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
			if !strings.Contains(err.Error(), tt.wantMsgPart) {
				t.Errorf("error %q missing %q", err.Error(), tt.wantMsgPart)
			}
			if strings.Contains(err.Error(), "SECRET_SOURCE_TEXT") {
				t.Errorf("error leaks provider message: %q", err.Error())
			}
		})
	}
}

func TestClient_ShortResponseIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchResponse{
			Translations: []translation{{Text: "uno", Confidence: 1}},
		})
	}))
	defer server.Close()

	client := NewClient("k", "")
	client.baseURL = server.URL

	units := []provider.Unit{{Key: "a", Text: "one"}, {Key: "b", Text: "two"}, {Key: "c", Text: "three"}}
	results, err := client.TranslateBatch(context.Background(), units, "en", "es", provider.Options{})
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	// Alignment policy lives in the orchestrator; the client just returns
	// what the provider sent.
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Key != "a" {
		t.Errorf("results[0].Key = %q, want a", results[0].Key)
	}
}
