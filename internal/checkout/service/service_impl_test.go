package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/checkout/store"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/config"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	"go.uber.org/zap"
)

// ledgerStub mimics the payment-intent idempotency guard in memory.
type ledgerStub struct {
	mu      sync.Mutex
	seen    map[string]ledgerdomain.Transaction
	balance int64
	err     error
}

func newLedgerStub(balance int64) *ledgerStub {
	return &ledgerStub{seen: map[string]ledgerdomain.Transaction{}, balance: balance}
}

func (l *ledgerStub) RecordPurchase(ctx context.Context, req ledgerdomain.RecordPurchaseRequest) (ledgerdomain.PurchaseResult, error) {
	if l.err != nil {
		return ledgerdomain.PurchaseResult{}, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.seen[req.PaymentIntent]; ok {
		return ledgerdomain.PurchaseResult{
			Transaction:      existing,
			NewCreditBalance: l.balance,
			AlreadyProcessed: true,
		}, nil
	}
	txn := ledgerdomain.Transaction{
		UserID:        req.UserID,
		Amount:        req.Amount,
		Credits:       req.Credits,
		Status:        ledgerdomain.StatusCompleted,
		PaymentIntent: req.PaymentIntent,
	}
	l.seen[req.PaymentIntent] = txn
	l.balance += req.Credits
	return ledgerdomain.PurchaseResult{Transaction: txn, NewCreditBalance: l.balance}, nil
}

func (l *ledgerStub) RecordSpend(ctx context.Context, req ledgerdomain.RecordSpendRequest) (ledgerdomain.SpendResult, error) {
	return ledgerdomain.SpendResult{}, errors.New("not implemented")
}

func (l *ledgerStub) FetchBalance(ctx context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

func (l *ledgerStub) FetchHistory(ctx context.Context, userID string) ([]ledgerdomain.Transaction, error) {
	return nil, nil
}

func setupCheckoutService(t *testing.T, ledger ledgerdomain.Service) (domain.Service, domain.SessionStore) {
	t.Helper()
	sessions := store.NewMemoryStore()
	svc := New(Params{
		Log:    zap.NewNop(),
		Cfg:    config.Config{CheckoutReturnURL: "/credits", CheckoutSessionTTLSeconds: 1800},
		Clock:  clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Store:  sessions,
		Ledger: ledger,
	})
	return svc, sessions
}

func TestCreateSessionKnownPackage(t *testing.T) {
	svc, sessions := setupCheckoutService(t, newLedgerStub(16))
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID:    "user-1",
		PackageID: "popular",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if resp.URL != "/credits?session_id="+resp.SessionID {
		t.Fatalf("unexpected return url %q", resp.URL)
	}

	stored, err := sessions.Get(ctx, resp.SessionID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if stored == nil {
		t.Fatal("session must be stored")
	}
	if stored.Credits != 150 || stored.AmountUSD != 12 {
		t.Fatalf("popular package is 150 credits for $12, got %d/$%v", stored.Credits, stored.AmountUSD)
	}
}

func TestCreateSessionUnknownPackage(t *testing.T) {
	svc, _ := setupCheckoutService(t, newLedgerStub(16))

	_, err := svc.CreateSession(context.Background(), domain.CreateSessionRequest{
		UserID:    "user-1",
		PackageID: "mega",
	})
	if !errors.Is(err, domain.ErrUnknownPackage) {
		t.Fatalf("expected unknown package, got %v", err)
	}
}

func TestCreateSessionMissingUser(t *testing.T) {
	svc, _ := setupCheckoutService(t, newLedgerStub(16))

	_, err := svc.CreateSession(context.Background(), domain.CreateSessionRequest{
		PackageID: "starter",
	})
	if !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestCompleteSessionGrantsOnce(t *testing.T) {
	ledger := newLedgerStub(16)
	svc, sessions := setupCheckoutService(t, ledger)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID:    "user-1",
		PackageID: "popular",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	first, err := svc.CompleteSession(ctx, created.SessionID)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if first.AlreadyProcessed {
		t.Fatal("first completion must not report already processed")
	}
	if first.NewCreditBalance != 166 {
		t.Fatalf("expected balance 166, got %d", first.NewCreditBalance)
	}

	// Completed sessions are consumed.
	if stored, err := sessions.Get(ctx, created.SessionID); err != nil || stored != nil {
		t.Fatalf("expected session consumed, got %v (%v)", stored, err)
	}

	// A retry of the same session id reports not found; a crash between
	// purchase and delete would instead replay through the ledger guard.
	if _, err := svc.CompleteSession(ctx, created.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}

	balance, _ := ledger.FetchBalance(ctx, "user-1")
	if balance != 166 {
		t.Fatalf("credits must be granted exactly once, got %d", balance)
	}
}

func TestCompleteSessionReplaysThroughLedger(t *testing.T) {
	ledger := newLedgerStub(16)
	svc, sessions := setupCheckoutService(t, ledger)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, domain.CreateSessionRequest{
		UserID:    "user-1",
		PackageID: "starter",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Simulate a crash after RecordPurchase but before the session delete:
	// the purchase is settled, the session row is still there.
	if _, err := ledger.RecordPurchase(ctx, ledgerdomain.RecordPurchaseRequest{
		UserID:        "user-1",
		Amount:        5,
		Credits:       50,
		PaymentIntent: created.SessionID,
	}); err != nil {
		t.Fatalf("seed settled purchase: %v", err)
	}

	resp, err := svc.CompleteSession(ctx, created.SessionID)
	if err != nil {
		t.Fatalf("complete session: %v", err)
	}
	if !resp.AlreadyProcessed {
		t.Fatal("retry must report already processed")
	}
	if resp.NewCreditBalance != 66 {
		t.Fatalf("retry must not re-credit, got %d", resp.NewCreditBalance)
	}
	if stored, _ := sessions.Get(ctx, created.SessionID); stored != nil {
		t.Fatal("retry must consume the session")
	}
}

func TestCompleteSessionNotFound(t *testing.T) {
	svc, _ := setupCheckoutService(t, newLedgerStub(16))

	_, err := svc.CompleteSession(context.Background(), "cs_test_missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestListPackages(t *testing.T) {
	svc, _ := setupCheckoutService(t, newLedgerStub(0))

	packages := svc.ListPackages(context.Background())
	if len(packages) != 4 {
		t.Fatalf("expected 4 packages, got %d", len(packages))
	}
	if packages[0].ID != "starter" || packages[0].Credits != 50 {
		t.Fatalf("unexpected first package %+v", packages[0])
	}
}
