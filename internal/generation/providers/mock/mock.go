package mock

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tambiyash/image-lizard/internal/generation/domain"
)

// Provider returns a deterministic placeholder URL instead of calling a real
// model. Default in development and tests.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "mock"
}

func (p *Provider) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	placeholder := fmt.Sprintf("/placeholder.svg?width=%d&height=%d&model=%s&prompt=%s",
		req.Model.Width,
		req.Model.Height,
		url.QueryEscape(req.Model.ID),
		url.QueryEscape(req.Prompt),
	)
	return domain.GenerateResponse{ImageURL: placeholder}, nil
}
