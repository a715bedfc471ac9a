package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/generation/domain"
	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	"go.uber.org/zap"
)

type ledgerStub struct {
	mu        sync.Mutex
	balance   int64
	spends    []ledgerdomain.RecordSpendRequest
	purchases []ledgerdomain.RecordPurchaseRequest
	node      *snowflake.Node
}

func (l *ledgerStub) RecordPurchase(ctx context.Context, req ledgerdomain.RecordPurchaseRequest) (ledgerdomain.PurchaseResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purchases = append(l.purchases, req)
	l.balance += req.Credits
	return ledgerdomain.PurchaseResult{NewCreditBalance: l.balance}, nil
}

func (l *ledgerStub) RecordSpend(ctx context.Context, req ledgerdomain.RecordSpendRequest) (ledgerdomain.SpendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance < req.Credits {
		return ledgerdomain.SpendResult{}, ledgerdomain.ErrInsufficientCredits
	}
	l.spends = append(l.spends, req)
	l.balance -= req.Credits
	return ledgerdomain.SpendResult{
		Transaction:      ledgerdomain.Transaction{ID: l.node.Generate(), Credits: -req.Credits},
		NewCreditBalance: l.balance,
	}, nil
}

func (l *ledgerStub) FetchBalance(ctx context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

func (l *ledgerStub) FetchHistory(ctx context.Context, userID string) ([]ledgerdomain.Transaction, error) {
	return nil, nil
}

type imageStub struct {
	saved []imagedomain.Image
	err   error
}

func (s *imageStub) Save(ctx context.Context, image *imagedomain.Image) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, *image)
	return nil
}

func (s *imageStub) ListByUser(ctx context.Context, req imagedomain.ListRequest) ([]imagedomain.Image, error) {
	return s.saved, nil
}

type providerStub struct {
	prompts []string
	url     string
	err     error
}

func (p *providerStub) Name() string { return "stub" }

func (p *providerStub) Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResponse, error) {
	p.prompts = append(p.prompts, req.Prompt)
	if p.err != nil {
		return domain.GenerateResponse{}, p.err
	}
	return domain.GenerateResponse{ImageURL: p.url}, nil
}

func setupGenerationService(t *testing.T, balance int64, provider domain.Provider, images imagedomain.Service) (domain.Service, *ledgerStub) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	ledger := &ledgerStub{balance: balance, node: node}
	svc := New(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Provider: provider,
		Ledger:   ledger,
		Images:   images,
	})
	return svc, ledger
}

func TestGenerateImageDeductsAndStores(t *testing.T) {
	provider := &providerStub{url: "https://cdn.example.com/img.png"}
	images := &imageStub{}
	svc, ledger := setupGenerationService(t, 100, provider, images)

	resp, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "a lizard on a skateboard",
		Model:  "iguana-fast",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if resp.CreditsSpent != 4 {
		t.Fatalf("iguana-fast costs 4 credits, got %d", resp.CreditsSpent)
	}
	if resp.NewCreditBalance != 96 {
		t.Fatalf("expected balance 96, got %d", resp.NewCreditBalance)
	}
	if resp.Image.ImageURL != provider.url {
		t.Fatalf("unexpected image url %q", resp.Image.ImageURL)
	}
	if len(images.saved) != 1 {
		t.Fatalf("expected 1 stored image, got %d", len(images.saved))
	}
	if images.saved[0].Prompt != "a lizard on a skateboard" {
		t.Fatalf("stored prompt must be the raw prompt, got %q", images.saved[0].Prompt)
	}
	if len(ledger.purchases) != 0 {
		t.Fatalf("successful generation must not refund, got %d purchases", len(ledger.purchases))
	}
}

func TestGenerateImageAutoEnhance(t *testing.T) {
	provider := &providerStub{url: "https://cdn.example.com/img.png"}
	images := &imageStub{}
	svc, _ := setupGenerationService(t, 100, provider, images)

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID:      "user-1",
		Prompt:      "a lizard",
		Model:       "iguana-sketch",
		AutoEnhance: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(provider.prompts) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(provider.prompts))
	}
	enhanced := provider.prompts[0]
	if !strings.HasPrefix(enhanced, "a lizard (") || !strings.Contains(enhanced, "concept art") {
		t.Fatalf("expected enhanced prompt, got %q", enhanced)
	}
	// The gallery keeps the prompt the user typed.
	if images.saved[0].Prompt != "a lizard" {
		t.Fatalf("stored prompt must be raw, got %q", images.saved[0].Prompt)
	}
}

func TestGenerateImageUnknownModel(t *testing.T) {
	svc, ledger := setupGenerationService(t, 100, &providerStub{}, &imageStub{})

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "a lizard",
		Model:  "iguana-ultra",
	})
	if !errors.Is(err, domain.ErrUnknownModel) {
		t.Fatalf("expected unknown model, got %v", err)
	}
	if len(ledger.spends) != 0 {
		t.Fatal("rejected request must not spend credits")
	}
}

func TestGenerateImageMissingPrompt(t *testing.T) {
	svc, _ := setupGenerationService(t, 100, &providerStub{}, &imageStub{})

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "   ",
		Model:  "iguana-fast",
	})
	if !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestGenerateImageInsufficientCredits(t *testing.T) {
	provider := &providerStub{url: "https://cdn.example.com/img.png"}
	svc, _ := setupGenerationService(t, 3, provider, &imageStub{})

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "a lizard",
		Model:  "iguana-fast",
	})
	if !errors.Is(err, ledgerdomain.ErrInsufficientCredits) {
		t.Fatalf("expected insufficient credits, got %v", err)
	}
	if len(provider.prompts) != 0 {
		t.Fatal("provider must not be called when the deduction fails")
	}
}

func TestGenerateImageProviderFailureRefunds(t *testing.T) {
	provider := &providerStub{err: errors.New("model overloaded")}
	svc, ledger := setupGenerationService(t, 100, provider, &imageStub{})

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "a lizard",
		Model:  "iguana-pro",
	})
	if err == nil {
		t.Fatal("expected provider error")
	}

	if len(ledger.purchases) != 1 {
		t.Fatalf("expected 1 refund, got %d", len(ledger.purchases))
	}
	refund := ledger.purchases[0]
	if refund.Credits != 63 {
		t.Fatalf("refund must restore the full cost, got %d", refund.Credits)
	}
	if !strings.HasPrefix(refund.PaymentIntent, "refund:") {
		t.Fatalf("refund intent must reference the spend, got %q", refund.PaymentIntent)
	}
	balance, _ := ledger.FetchBalance(context.Background(), "user-1")
	if balance != 100 {
		t.Fatalf("balance must be restored to 100, got %d", balance)
	}
}

func TestGenerateImageSaveFailureRefunds(t *testing.T) {
	provider := &providerStub{url: "https://cdn.example.com/img.png"}
	images := &imageStub{err: errors.New("disk full")}
	svc, ledger := setupGenerationService(t, 100, provider, images)

	_, err := svc.GenerateImage(context.Background(), domain.GenerateImageRequest{
		UserID: "user-1",
		Prompt: "a lizard",
		Model:  "iguana-fast",
	})
	if err == nil {
		t.Fatal("expected save error")
	}
	balance, _ := ledger.FetchBalance(context.Background(), "user-1")
	if balance != 100 {
		t.Fatalf("balance must be restored after save failure, got %d", balance)
	}
}

func TestListModels(t *testing.T) {
	svc, _ := setupGenerationService(t, 0, &providerStub{}, &imageStub{})

	models := svc.ListModels(context.Background())
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	costs := map[string]int64{}
	for _, m := range models {
		costs[m.ID] = m.CreditCost
	}
	if costs["iguana-fast"] != 4 || costs["iguana-sketch"] != 32 || costs["iguana-pro"] != 63 {
		t.Fatalf("unexpected model costs %v", costs)
	}
}
