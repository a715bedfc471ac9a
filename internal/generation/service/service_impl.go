package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/generation/domain"
	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	obsmetrics "github.com/tambiyash/image-lizard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Provider   domain.Provider
	Ledger     ledgerdomain.Service
	Images     imagedomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	provider   domain.Provider
	ledger     ledgerdomain.Service
	images     imagedomain.Service
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("generation.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		provider:   p.Provider,
		ledger:     p.Ledger,
		images:     p.Images,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) ListModels(ctx context.Context) []domain.ModelInfo {
	return domain.Models
}

// GenerateImage runs deduct, render, persist. The deduction happens before
// the provider call so a slow render cannot be used to overdraw; a failed
// render is compensated with a refund credit keyed on the spend transaction
// id, which keeps retried refunds idempotent.
func (s *Service) GenerateImage(ctx context.Context, req domain.GenerateImageRequest) (domain.GenerateImageResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	prompt := strings.TrimSpace(req.Prompt)
	if userID == "" || prompt == "" {
		return domain.GenerateImageResponse{}, domain.ErrMissingFields
	}
	model, ok := domain.ModelByID(strings.TrimSpace(req.Model))
	if !ok {
		return domain.GenerateImageResponse{}, domain.ErrUnknownModel
	}

	if req.AutoEnhance && model.EnhanceSuffix != "" {
		prompt = fmt.Sprintf("%s (%s)", prompt, model.EnhanceSuffix)
	}

	spend, err := s.ledger.RecordSpend(ctx, ledgerdomain.RecordSpendRequest{
		UserID:    userID,
		Credits:   model.CreditCost,
		Reference: fmt.Sprintf("gen:%s", s.genID.Generate().String()),
		Metadata: map[string]any{
			"model":  model.ID,
			"source": "generation",
		},
	})
	if err != nil {
		return domain.GenerateImageResponse{}, err
	}

	rendered, err := s.provider.Generate(ctx, domain.GenerateRequest{Prompt: prompt, Model: model})
	if err != nil {
		s.obsMetrics.RecordGeneration(model.ID, "failed")
		s.refund(ctx, userID, model, spend.Transaction.ID)
		return domain.GenerateImageResponse{}, err
	}

	image := imagedomain.Image{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Prompt:    req.Prompt,
		Model:     model.ID,
		ImageURL:  rendered.ImageURL,
		CreatedAt: s.clock.Now(),
	}
	if err := s.images.Save(ctx, &image); err != nil {
		s.obsMetrics.RecordGeneration(model.ID, "failed")
		s.refund(ctx, userID, model, spend.Transaction.ID)
		return domain.GenerateImageResponse{}, fmt.Errorf("save image: %w", err)
	}

	s.obsMetrics.RecordGeneration(model.ID, "succeeded")
	s.log.Info("image generated",
		zap.String("user_id", userID),
		zap.String("model", model.ID),
		zap.String("provider", s.provider.Name()),
		zap.Int64("credits_spent", model.CreditCost),
	)

	return domain.GenerateImageResponse{
		Image:            image,
		CreditsSpent:     model.CreditCost,
		NewCreditBalance: spend.NewCreditBalance,
	}, nil
}

// refund compensates a failed generation. The refund payment intent embeds
// the spend transaction id, so replaying the compensation cannot credit the
// user twice.
func (s *Service) refund(ctx context.Context, userID string, model domain.ModelInfo, spendTxID snowflake.ID) {
	_, err := s.ledger.RecordPurchase(ctx, ledgerdomain.RecordPurchaseRequest{
		UserID:        userID,
		Amount:        0,
		Credits:       model.CreditCost,
		PaymentIntent: fmt.Sprintf("refund:%s", spendTxID.String()),
		Metadata: map[string]any{
			"model":  model.ID,
			"source": "refund",
		},
	})
	if err != nil {
		s.log.Error("refund failed",
			zap.String("user_id", userID),
			zap.String("spend_tx", spendTxID.String()),
			zap.Error(err),
		)
		return
	}
	s.obsMetrics.RecordCreditsGranted("refund", model.CreditCost)
}
