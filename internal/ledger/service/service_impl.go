package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/ledger/domain"
	obsmetrics "github.com/tambiyash/image-lizard/internal/observability/metrics"
	profiledomain "github.com/tambiyash/image-lizard/internal/profile/domain"
	"github.com/tambiyash/image-lizard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// errAlreadyProcessed aborts the purchase transaction when the unique
// (user_id, payment_intent) index rejects the insert. It never escapes
// RecordPurchase.
var errAlreadyProcessed = errors.New("purchase already processed")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProfileRepo profiledomain.Repository
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	profileRepo profiledomain.Repository
	obsMetrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ledger.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		profileRepo: p.ProfileRepo,
		obsMetrics:  p.ObsMetrics,
	}
}

// RecordPurchase appends a completed transaction and bumps the balance inside
// one database transaction: either both writes persist or neither does. The
// unique index on (user_id, payment_intent) is the idempotency guard; a
// duplicate-key rejection on insert means a prior attempt already settled,
// and the prior transaction plus the current balance are returned instead.
func (s *Service) RecordPurchase(ctx context.Context, req domain.RecordPurchaseRequest) (domain.PurchaseResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.PurchaseResult{}, domain.ErrMissingFields
	}
	if req.Amount < 0 {
		return domain.PurchaseResult{}, domain.ErrInvalidAmount
	}
	if req.Credits < 0 {
		return domain.PurchaseResult{}, domain.ErrInvalidCredits
	}

	paymentIntent := strings.TrimSpace(req.PaymentIntent)
	if paymentIntent == "" {
		paymentIntent = domain.DefaultPaymentIntent
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	txn := domain.Transaction{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Amount:        req.Amount,
		Credits:       req.Credits,
		Status:        domain.StatusCompleted,
		PaymentIntent: paymentIntent,
		Metadata:      metadata,
		CreatedAt:     now,
	}

	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &txn); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return errAlreadyProcessed
			}
			return fmt.Errorf("create transaction: %w", err)
		}

		balance, ok, err := s.profileRepo.AddCredits(ctx, tx, userID, req.Credits, now)
		if err != nil {
			return fmt.Errorf("update credits: %w", err)
		}
		if !ok {
			// Rolls back the insert; no orphan ledger row is left
			// behind when the account is missing.
			return profiledomain.ErrProfileNotFound
		}
		newBalance = balance
		return nil
	})
	if errors.Is(err, errAlreadyProcessed) {
		return s.replayPurchase(ctx, userID, paymentIntent)
	}
	if err != nil {
		s.obsMetrics.RecordPurchase("failed")
		return domain.PurchaseResult{}, err
	}

	s.obsMetrics.RecordPurchase("recorded")
	s.obsMetrics.RecordCreditsGranted("purchase", req.Credits)
	s.log.Info("purchase recorded",
		zap.String("user_id", userID),
		zap.String("payment_intent", paymentIntent),
		zap.Int64("credits", req.Credits),
		zap.Int64("new_balance", newBalance),
	)

	return domain.PurchaseResult{
		Transaction:      txn,
		NewCreditBalance: newBalance,
	}, nil
}

// replayPurchase serves the duplicate path: re-read the settled transaction
// and the current balance, mutate nothing.
func (s *Service) replayPurchase(ctx context.Context, userID, paymentIntent string) (domain.PurchaseResult, error) {
	existing, err := s.repo.FindByPaymentIntent(ctx, s.db, userID, paymentIntent)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("load existing transaction: %w", err)
	}
	if existing == nil {
		// The row that beat us was removed out-of-band; surface the
		// conflict rather than crediting twice.
		return domain.PurchaseResult{}, fmt.Errorf("transaction for payment intent %q not found after conflict", paymentIntent)
	}

	profile, err := s.profileRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return domain.PurchaseResult{}, profiledomain.ErrProfileNotFound
	}

	s.obsMetrics.RecordPurchase("already_processed")
	s.log.Info("purchase replayed",
		zap.String("user_id", userID),
		zap.String("payment_intent", paymentIntent),
	)

	return domain.PurchaseResult{
		Transaction:      *existing,
		NewCreditBalance: profile.Credits,
		AlreadyProcessed: true,
	}, nil
}

// RecordSpend deducts credits and appends the matching ledger row in one
// database transaction. The deduction is a single conditional statement, so
// concurrent spends can never drive the balance negative.
func (s *Service) RecordSpend(ctx context.Context, req domain.RecordSpendRequest) (domain.SpendResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.SpendResult{}, domain.ErrMissingFields
	}
	if req.Credits <= 0 {
		return domain.SpendResult{}, domain.ErrInvalidCredits
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return domain.SpendResult{}, domain.ErrInvalidReference
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	txn := domain.Transaction{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Amount:        0,
		Credits:       -req.Credits,
		Status:        domain.StatusCompleted,
		PaymentIntent: reference,
		Metadata:      metadata,
		CreatedAt:     now,
	}

	var newBalance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, ok, err := s.profileRepo.DeductCredits(ctx, tx, userID, req.Credits, now)
		if err != nil {
			return fmt.Errorf("deduct credits: %w", err)
		}
		if !ok {
			profile, err := s.profileRepo.FindByID(ctx, tx, userID)
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			if profile == nil {
				return profiledomain.ErrProfileNotFound
			}
			return domain.ErrInsufficientCredits
		}
		newBalance = balance

		if err := s.repo.Insert(ctx, tx, &txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.SpendResult{}, err
	}

	s.obsMetrics.RecordCreditsSpent(req.Credits)
	s.log.Info("spend recorded",
		zap.String("user_id", userID),
		zap.String("reference", reference),
		zap.Int64("credits", req.Credits),
		zap.Int64("new_balance", newBalance),
	)

	return domain.SpendResult{
		Transaction:      txn,
		NewCreditBalance: newBalance,
	}, nil
}

func (s *Service) FetchBalance(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, domain.ErrMissingFields
	}

	profile, err := s.profileRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, profiledomain.ErrProfileNotFound
	}
	return profile.Credits, nil
}

func (s *Service) FetchHistory(ctx context.Context, userID string) ([]domain.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrMissingFields
	}
	return s.repo.ListByUser(ctx, s.db, userID)
}
