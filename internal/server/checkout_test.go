package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
	"go.uber.org/zap"
)

type fakeCheckoutService struct {
	createResp   checkoutdomain.CreateSessionResponse
	createErr    error
	completeResp checkoutdomain.CompleteSessionResponse
	completeErr  error
}

func (f *fakeCheckoutService) ListPackages(ctx context.Context) []checkoutdomain.CreditPackage {
	return checkoutdomain.Packages
}

func (f *fakeCheckoutService) CreateSession(ctx context.Context, req checkoutdomain.CreateSessionRequest) (checkoutdomain.CreateSessionResponse, error) {
	return f.createResp, f.createErr
}

func (f *fakeCheckoutService) CompleteSession(ctx context.Context, sessionID string) (checkoutdomain.CompleteSessionResponse, error) {
	return f.completeResp, f.completeErr
}

func newCheckoutRouter(checkout checkoutdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{checkoutSvc: checkout, log: zap.NewNop()}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/v1/checkout/packages", srv.ListCreditPackages)
	router.POST("/api/v1/checkout/sessions", srv.CreateCheckoutSession)
	router.POST("/api/v1/checkout/complete", srv.CompleteCheckoutSession)
	return router
}

func TestListCreditPackagesEndpoint(t *testing.T) {
	router := newCheckoutRouter(&fakeCheckoutService{})

	resp := doJSON(t, router, http.MethodGet, "/api/v1/checkout/packages", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	envelope := decodeEnvelope(t, resp)
	data, ok := envelope["data"].([]any)
	if !ok || len(data) != 4 {
		t.Fatalf("expected 4 packages, got %v", envelope["data"])
	}
}

func TestCreateCheckoutSessionUnknownPackage(t *testing.T) {
	router := newCheckoutRouter(&fakeCheckoutService{createErr: checkoutdomain.ErrUnknownPackage})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/checkout/sessions",
		`{"userId":"user-1","packageId":"mega"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope["error"] != "Unknown credit package" {
		t.Fatalf("unexpected error %q", envelope["error"])
	}
}

func TestCompleteCheckoutSessionNotFound(t *testing.T) {
	router := newCheckoutRouter(&fakeCheckoutService{completeErr: checkoutdomain.ErrSessionNotFound})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/checkout/complete",
		`{"sessionId":"cs_test_missing"}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCompleteCheckoutSessionSuccess(t *testing.T) {
	router := newCheckoutRouter(&fakeCheckoutService{
		completeResp: checkoutdomain.CompleteSessionResponse{
			SessionID:        "cs_test_abc",
			CreditsGranted:   150,
			NewCreditBalance: 166,
		},
	})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/checkout/complete",
		`{"sessionId":"cs_test_abc"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	envelope := decodeEnvelope(t, resp)
	data := envelope["data"].(map[string]any)
	if data["newCreditBalance"] != float64(166) {
		t.Fatalf("unexpected balance %v", data["newCreditBalance"])
	}
}
