package repository

import (
	"context"

	"github.com/tambiyash/image-lizard/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (id, user_id, amount, credits, status, payment_intent, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.UserID,
		txn.Amount,
		txn.Credits,
		string(txn.Status),
		txn.PaymentIntent,
		txn.Metadata,
		txn.CreatedAt,
	).Error
}

func (r *repo) FindByPaymentIntent(ctx context.Context, db *gorm.DB, userID, paymentIntent string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, credits, status, payment_intent, metadata, created_at
		 FROM transactions WHERE user_id = ? AND payment_intent = ?`,
		userID,
		paymentIntent,
	).Scan(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount, credits, status, payment_intent, metadata, created_at
		 FROM transactions WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
