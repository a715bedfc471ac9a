package fal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/generation/domain"
)

func testModel() domain.ModelInfo {
	model, ok := domain.ModelByID("iguana-sketch")
	if !ok {
		panic("iguana-sketch missing from catalog")
	}
	return model
}

func TestGenerateSendsModelParams(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"images": []map[string]any{
				{"url": "https://cdn.fal.example/out.png", "content_type": "image/png"},
			},
		})
	}))
	defer server.Close()

	provider := New(config.Config{FalBaseURL: server.URL, FalAPIKey: "secret-key"})
	resp, err := provider.Generate(context.Background(), domain.GenerateRequest{
		Prompt: "a lizard",
		Model:  testModel(),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if resp.ImageURL != "https://cdn.fal.example/out.png" {
		t.Fatalf("unexpected image url %q", resp.ImageURL)
	}
	if gotPath != "/fal-ai/playground-v25" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Key secret-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["prompt"] != "a lizard" {
		t.Fatalf("unexpected prompt %v", gotBody["prompt"])
	}
	if gotBody["num_inference_steps"] != float64(25) {
		t.Fatalf("unexpected steps %v", gotBody["num_inference_steps"])
	}
	if gotBody["guidance_scale"] != float64(3) {
		t.Fatalf("unexpected guidance %v", gotBody["guidance_scale"])
	}
}

func TestGenerateNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := New(config.Config{FalBaseURL: server.URL, FalAPIKey: "secret-key"})
	_, err := provider.Generate(context.Background(), domain.GenerateRequest{
		Prompt: "a lizard",
		Model:  testModel(),
	})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}

func TestGenerateEmptyImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"images": []any{}})
	}))
	defer server.Close()

	provider := New(config.Config{FalBaseURL: server.URL, FalAPIKey: "secret-key"})
	_, err := provider.Generate(context.Background(), domain.GenerateRequest{
		Prompt: "a lizard",
		Model:  testModel(),
	})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}
