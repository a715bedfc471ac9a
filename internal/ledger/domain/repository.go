package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Insert appends a transaction row. A unique index on
	// (user_id, payment_intent) makes the duplicate-key error the
	// authoritative already-processed signal.
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByPaymentIntent(ctx context.Context, db *gorm.DB, userID, paymentIntent string) (*Transaction, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]Transaction, error)
}
