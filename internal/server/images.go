package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	generationdomain "github.com/tambiyash/image-lizard/internal/generation/domain"
	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
	"go.uber.org/zap"
)

type generateImageRequest struct {
	UserID      string `json:"userId"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	AutoEnhance bool   `json:"autoEnhance"`
}

func (s *Server) ListModels(c *gin.Context) {
	respondData(c, s.generationSvc.ListModels(c.Request.Context()))
}

// GenerateRateLimit gates the generate endpoint per user: a token bucket
// caps the request rate and a short lock keeps renders single-flight.
func (s *Server) GenerateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.generateLimiter.Enabled() {
			c.Next()
			return
		}

		var req generateImageRequest
		if err := c.ShouldBindBodyWithJSON(&req); err != nil {
			AbortWithError(c, generationdomain.ErrMissingFields)
			return
		}
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			AbortWithError(c, generationdomain.ErrMissingFields)
			return
		}

		result, err := s.generateLimiter.Allow(c.Request.Context(), userID)
		if err != nil {
			// Limiter outage must not take generation down with it.
			s.log.Warn("generate rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.obsMetrics.RecordRateLimitDenied("/api/v1/images/generate")
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func (s *Server) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		AbortWithError(c, generationdomain.ErrMissingFields)
		return
	}
	userID := strings.TrimSpace(req.UserID)

	if s.generateLimiter.Enabled() && userID != "" {
		token, ok, err := s.generateLimiter.TryLockUser(c.Request.Context(), userID)
		if err != nil {
			s.log.Warn("generate lock failed", zap.Error(err))
		} else if !ok {
			AbortWithError(c, ErrGenerationInFlight)
			return
		} else {
			defer func() {
				_ = s.generateLimiter.ReleaseUser(c.Request.Context(), userID, token)
			}()
		}
	}

	resp, err := s.generationSvc.GenerateImage(c.Request.Context(), generationdomain.GenerateImageRequest{
		UserID:      userID,
		Prompt:      req.Prompt,
		Model:       req.Model,
		AutoEnhance: req.AutoEnhance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

func (s *Server) ListImages(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		AbortWithError(c, ErrUserIDRequired)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	images, err := s.imageSvc.ListByUser(c.Request.Context(), imagedomain.ListRequest{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if images == nil {
		images = []imagedomain.Image{}
	}

	respondData(c, images)
}
