package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tambiyash/image-lizard/internal/config"
	"github.com/tambiyash/image-lizard/internal/generation/domain"
)

const defaultTimeout = 120 * time.Second

// Provider renders through a Fal-style synchronous REST endpoint:
// POST {base}/fal-ai/{model}, Authorization: Key {api_key}.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(cfg config.Config) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(cfg.FalBaseURL, "/"),
		apiKey:  cfg.FalAPIKey,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (p *Provider) Name() string {
	return "fal"
}

type generateRequest struct {
	Prompt            string  `json:"prompt"`
	ImageSize         size    `json:"image_size"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
	NumImages         int     `json:"num_images"`
}

type size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generateResponse struct {
	Images []responseImage `json:"images"`
}

type responseImage struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

func (p *Provider) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	payload, err := json.Marshal(generateRequest{
		Prompt:            req.Prompt,
		ImageSize:         size{Width: req.Model.Width, Height: req.Model.Height},
		NumInferenceSteps: req.Model.Steps,
		GuidanceScale:     req.Model.Guidance,
		NumImages:         1,
	})
	if err != nil {
		return domain.GenerateResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/fal-ai/%s", p.baseURL, req.Model.ProviderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.GenerateResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return domain.GenerateResponse{}, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return domain.GenerateResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.GenerateResponse{}, fmt.Errorf("%w: status %d: %s",
			domain.ErrProviderFailure, resp.StatusCode, truncate(body, 256))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.GenerateResponse{}, fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}
	if len(out.Images) == 0 || strings.TrimSpace(out.Images[0].URL) == "" {
		return domain.GenerateResponse{}, fmt.Errorf("%w: empty image response", domain.ErrProviderFailure)
	}

	return domain.GenerateResponse{ImageURL: out.Images[0].URL}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
