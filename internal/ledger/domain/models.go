package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TransactionStatus enumerates ledger transaction states.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// DefaultPaymentIntent is the sentinel used when a purchase carries no
// checkout-issued payment intent.
const DefaultPaymentIntent = "cash"

// Transaction is one append-only ledger row. Rows are created once and never
// updated or deleted; the profile balance is derived state.
type Transaction struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID        string            `gorm:"column:user_id;not null;index" json:"user_id"`
	Amount        float64           `gorm:"not null" json:"amount"`
	Credits       int64             `gorm:"not null" json:"credits"`
	Status        TransactionStatus `gorm:"type:text;not null" json:"status"`
	PaymentIntent string            `gorm:"column:payment_intent;not null" json:"payment_intent"`
	Metadata      datatypes.JSONMap `gorm:"not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

type RecordPurchaseRequest struct {
	UserID        string
	Amount        float64
	Credits       int64
	PaymentIntent string
	Metadata      map[string]any
}

// PurchaseResult mirrors the public transactions API payload.
type PurchaseResult struct {
	Transaction      Transaction `json:"transaction"`
	NewCreditBalance int64       `json:"newCreditBalance"`
	AlreadyProcessed bool        `json:"alreadyProcessed,omitempty"`
}

type RecordSpendRequest struct {
	UserID string
	// Credits to deduct; must be positive.
	Credits int64
	// Reference identifies the spend (one per generation) and doubles as
	// the idempotency key for the spend row.
	Reference string
	Metadata  map[string]any
}

type SpendResult struct {
	Transaction      Transaction `json:"transaction"`
	NewCreditBalance int64       `json:"newCreditBalance"`
}

type Service interface {
	// RecordPurchase durably grants credits exactly once per
	// (userID, paymentIntent). Replays return the prior transaction with
	// AlreadyProcessed set and leave the balance untouched.
	RecordPurchase(ctx context.Context, req RecordPurchaseRequest) (PurchaseResult, error)
	// RecordSpend atomically deducts credits when the balance covers
	// them and appends the matching ledger row.
	RecordSpend(ctx context.Context, req RecordSpendRequest) (SpendResult, error)
	// FetchBalance reads the current balance without side effects.
	FetchBalance(ctx context.Context, userID string) (int64, error)
	// FetchHistory returns every transaction for the user, newest first.
	FetchHistory(ctx context.Context, userID string) ([]Transaction, error)
}

var (
	ErrMissingFields       = errors.New("missing_required_fields")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCredits      = errors.New("invalid_credits")
	ErrInvalidReference    = errors.New("invalid_reference")
	ErrInsufficientCredits = errors.New("insufficient_credits")
)
