package domain

import (
	"context"
	"errors"

	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
)

// ModelInfo describes one generation tier: the public id, what it costs in
// credits, and how it maps onto the provider.
type ModelInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CreditCost  int64   `json:"creditCost"`
	ProviderID  string  `json:"-"`
	Width       int     `json:"-"`
	Height      int     `json:"-"`
	Steps       int     `json:"-"`
	Guidance    float64 `json:"-"`
	// EnhanceSuffix is appended in parentheses when auto-enhance is on.
	EnhanceSuffix string `json:"-"`
}

var Models = []ModelInfo{
	{
		ID:            "iguana-fast",
		Name:          "Iguana Fast",
		Description:   "Versatile model optimized for rapid image generation with precise style control",
		CreditCost:    4,
		ProviderID:    "fast-sdxl",
		Width:         1024,
		Height:        1024,
		Steps:         15,
		EnhanceSuffix: "high quality, detailed, professional photography, sharp focus",
	},
	{
		ID:            "iguana-sketch",
		Name:          "Iguana Sketch",
		Description:   "Fast model specialized in detailed concept art, sketches, and illustrations",
		CreditCost:    32,
		ProviderID:    "playground-v25",
		Width:         1024,
		Height:        1024,
		Steps:         25,
		Guidance:      3,
		EnhanceSuffix: "detailed sketch, fine lines, professional illustration, concept art",
	},
	{
		ID:            "iguana-pro",
		Name:          "Iguana Pro",
		Description:   "Premium model delivering ultra-realistic images with exceptional detail",
		CreditCost:    63,
		ProviderID:    "stable-diffusion-v35-large",
		Width:         1024,
		Height:        1024,
		Steps:         50,
		Guidance:      4.5,
		EnhanceSuffix: "ultra-realistic, cinematic lighting, 8k resolution, professional photography, detailed textures",
	},
}

// ModelByID returns the model with the given id, or false.
func ModelByID(id string) (ModelInfo, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GenerateRequest is what a provider is asked to render. Prompt already has
// any auto-enhance suffix applied.
type GenerateRequest struct {
	Prompt string
	Model  ModelInfo
}

// GenerateResponse carries the rendered image as a data URL
// ("data:image/png;base64,...") or a hosted URL, provider depending.
type GenerateResponse struct {
	ImageURL string
}

// Provider renders images. Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

type GenerateImageRequest struct {
	UserID      string
	Prompt      string
	Model       string
	AutoEnhance bool
}

type GenerateImageResponse struct {
	Image            imagedomain.Image `json:"image"`
	CreditsSpent     int64             `json:"creditsSpent"`
	NewCreditBalance int64             `json:"newCreditBalance"`
}

type Service interface {
	ListModels(ctx context.Context) []ModelInfo
	// GenerateImage deducts the model's credit cost, renders through the
	// provider, and stores the result. Provider failure refunds the
	// deduction before the error is returned.
	GenerateImage(ctx context.Context, req GenerateImageRequest) (GenerateImageResponse, error)
}

var (
	ErrMissingFields    = errors.New("missing_required_fields")
	ErrUnknownModel     = errors.New("unknown_model")
	ErrProviderNotFound = errors.New("generation_provider_not_found")
	ErrProviderFailure  = errors.New("generation_provider_failure")
)
