package domain

import (
	"context"
	"errors"
	"time"
)

// CreditPackage is a purchasable credit bundle. The catalog is fixed; there
// is no package admin surface.
type CreditPackage struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Credits   int64   `json:"credits"`
	AmountUSD float64 `json:"amountUsd"`
}

var Packages = []CreditPackage{
	{ID: "starter", Name: "Starter", Credits: 50, AmountUSD: 5},
	{ID: "popular", Name: "Popular", Credits: 150, AmountUSD: 12},
	{ID: "pro", Name: "Professional", Credits: 400, AmountUSD: 29},
	{ID: "unlimited", Name: "Studio", Credits: 1000, AmountUSD: 59},
}

// PackageByID returns the package with the given id, or false.
func PackageByID(id string) (CreditPackage, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return CreditPackage{}, false
}

// Session is an open mocked checkout. Its ID doubles as the payment intent
// when the purchase is recorded, which makes completion replay-safe.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PackageID string    `json:"packageId"`
	Credits   int64     `json:"credits"`
	AmountUSD float64   `json:"amountUsd"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore keeps open sessions until they are completed or expire.
type SessionStore interface {
	Put(ctx context.Context, session Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type CreateSessionRequest struct {
	UserID    string
	PackageID string
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type CompleteSessionResponse struct {
	SessionID        string `json:"sessionId"`
	CreditsGranted   int64  `json:"creditsGranted"`
	NewCreditBalance int64  `json:"newCreditBalance"`
	AlreadyProcessed bool   `json:"alreadyProcessed,omitempty"`
}

type Service interface {
	ListPackages(ctx context.Context) []CreditPackage
	CreateSession(ctx context.Context, req CreateSessionRequest) (CreateSessionResponse, error)
	// CompleteSession redeems the session and credits the buyer. Replays
	// settle against the ledger's payment-intent guard, so completing the
	// same session twice grants credits once.
	CompleteSession(ctx context.Context, sessionID string) (CompleteSessionResponse, error)
}

var (
	ErrMissingFields   = errors.New("missing_required_fields")
	ErrUnknownPackage  = errors.New("unknown_package")
	ErrSessionNotFound = errors.New("checkout_session_not_found")
)
