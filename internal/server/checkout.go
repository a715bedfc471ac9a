package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
)

type createCheckoutSessionRequest struct {
	UserID    string `json:"userId"`
	PackageID string `json:"packageId"`
}

type completeCheckoutSessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) ListCreditPackages(c *gin.Context) {
	respondData(c, s.checkoutSvc.ListPackages(c.Request.Context()))
}

func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, checkoutdomain.ErrMissingFields)
		return
	}

	resp, err := s.checkoutSvc.CreateSession(c.Request.Context(), checkoutdomain.CreateSessionRequest{
		UserID:    strings.TrimSpace(req.UserID),
		PackageID: strings.TrimSpace(req.PackageID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

func (s *Server) CompleteCheckoutSession(c *gin.Context) {
	var req completeCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, checkoutdomain.ErrMissingFields)
		return
	}

	resp, err := s.checkoutSvc.CompleteSession(c.Request.Context(), strings.TrimSpace(req.SessionID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}
