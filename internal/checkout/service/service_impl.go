package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tambiyash/image-lizard/internal/checkout/domain"
	"github.com/tambiyash/image-lizard/internal/clock"
	"github.com/tambiyash/image-lizard/internal/config"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	obsmetrics "github.com/tambiyash/image-lizard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Cfg        config.Config
	Clock      clock.Clock
	Store      domain.SessionStore
	Ledger     ledgerdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	cfg        config.Config
	clock      clock.Clock
	store      domain.SessionStore
	ledger     ledgerdomain.Service
	obsMetrics *obsmetrics.Metrics
	sessionTTL time.Duration
}

func New(p Params) domain.Service {
	ttl := time.Duration(p.Cfg.CheckoutSessionTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{
		log:        p.Log.Named("checkout.service"),
		cfg:        p.Cfg,
		clock:      p.Clock,
		store:      p.Store,
		ledger:     p.Ledger,
		obsMetrics: p.ObsMetrics,
		sessionTTL: ttl,
	}
}

func (s *Service) ListPackages(ctx context.Context) []domain.CreditPackage {
	return domain.Packages
}

func (s *Service) CreateSession(ctx context.Context, req domain.CreateSessionRequest) (domain.CreateSessionResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return domain.CreateSessionResponse{}, domain.ErrMissingFields
	}
	pkg, ok := domain.PackageByID(strings.TrimSpace(req.PackageID))
	if !ok {
		return domain.CreateSessionResponse{}, domain.ErrUnknownPackage
	}

	session := domain.Session{
		ID:        newSessionID(),
		UserID:    userID,
		PackageID: pkg.ID,
		Credits:   pkg.Credits,
		AmountUSD: pkg.AmountUSD,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Put(ctx, session, s.sessionTTL); err != nil {
		return domain.CreateSessionResponse{}, fmt.Errorf("store session: %w", err)
	}

	s.obsMetrics.RecordCheckoutSession("created")
	s.log.Info("checkout session created",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("package_id", pkg.ID),
	)

	return domain.CreateSessionResponse{
		SessionID: session.ID,
		URL:       fmt.Sprintf("%s?session_id=%s", s.cfg.CheckoutReturnURL, session.ID),
	}, nil
}

func (s *Service) CompleteSession(ctx context.Context, sessionID string) (domain.CompleteSessionResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.CompleteSessionResponse{}, domain.ErrMissingFields
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return domain.CompleteSessionResponse{}, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return domain.CompleteSessionResponse{}, domain.ErrSessionNotFound
	}

	// The session id is the payment intent, so a crash between the
	// purchase and the delete below cannot double-credit: the retry
	// replays against the ledger's unique index.
	result, err := s.ledger.RecordPurchase(ctx, ledgerdomain.RecordPurchaseRequest{
		UserID:        session.UserID,
		Amount:        session.AmountUSD,
		Credits:       session.Credits,
		PaymentIntent: session.ID,
		Metadata: map[string]any{
			"package": session.PackageID,
			"source":  "checkout",
		},
	})
	if err != nil {
		return domain.CompleteSessionResponse{}, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn("delete completed session", zap.String("session_id", sessionID), zap.Error(err))
	}

	s.obsMetrics.RecordCheckoutSession("completed")
	s.log.Info("checkout session completed",
		zap.String("user_id", session.UserID),
		zap.String("session_id", sessionID),
		zap.Int64("credits", session.Credits),
		zap.Bool("already_processed", result.AlreadyProcessed),
	)

	return domain.CompleteSessionResponse{
		SessionID:        sessionID,
		CreditsGranted:   session.Credits,
		NewCreditBalance: result.NewCreditBalance,
		AlreadyProcessed: result.AlreadyProcessed,
	}, nil
}

func newSessionID() string {
	return "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
