package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
)

type createTransactionRequest struct {
	UserID        string         `json:"userId"`
	Amount        *float64       `json:"amount"`
	Credits       *int64         `json:"credits"`
	PaymentIntent string         `json:"paymentIntent"`
	Metadata      map[string]any `json:"metadata"`
}

// CreateTransaction records a purchase. Replays of the same paymentIntent
// return the settled transaction with alreadyProcessed set.
func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ledgerdomain.ErrMissingFields)
		return
	}

	// Absent amount or credits is a client error; zero is a valid value.
	if strings.TrimSpace(req.UserID) == "" || req.Amount == nil || req.Credits == nil {
		AbortWithError(c, ledgerdomain.ErrMissingFields)
		return
	}

	result, err := s.ledgerSvc.RecordPurchase(c.Request.Context(), ledgerdomain.RecordPurchaseRequest{
		UserID:        req.UserID,
		Amount:        *req.Amount,
		Credits:       *req.Credits,
		PaymentIntent: req.PaymentIntent,
		Metadata:      req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, result)
}

func (s *Server) ListTransactions(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		AbortWithError(c, ErrUserIDRequired)
		return
	}

	transactions, err := s.ledgerSvc.FetchHistory(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if transactions == nil {
		transactions = []ledgerdomain.Transaction{}
	}

	respondData(c, transactions)
}
