package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/tambiyash/image-lizard/internal/checkout/domain"
	generationdomain "github.com/tambiyash/image-lizard/internal/generation/domain"
	imagedomain "github.com/tambiyash/image-lizard/internal/image/domain"
	ledgerdomain "github.com/tambiyash/image-lizard/internal/ledger/domain"
	profiledomain "github.com/tambiyash/image-lizard/internal/profile/domain"
	"gorm.io/gorm"
)

// Every response uses one envelope: {"success":true,"data":...} or
// {"success":false,"error":"..."}.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrUserIDRequired     = errors.New("user_id_required")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrGenerationInFlight = errors.New("generation_in_progress")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data})
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, ledgerdomain.ErrMissingFields),
		errors.Is(err, checkoutdomain.ErrMissingFields),
		errors.Is(err, generationdomain.ErrMissingFields),
		errors.Is(err, imagedomain.ErrMissingFields),
		errors.Is(err, profiledomain.ErrInvalidUserID):
		return http.StatusBadRequest, "Missing required fields"
	case errors.Is(err, ErrUserIDRequired):
		return http.StatusBadRequest, "User ID is required"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, ledgerdomain.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, ledgerdomain.ErrInvalidCredits):
		return http.StatusBadRequest, "Invalid credits"
	case errors.Is(err, checkoutdomain.ErrUnknownPackage):
		return http.StatusBadRequest, "Unknown credit package"
	case errors.Is(err, generationdomain.ErrUnknownModel):
		return http.StatusBadRequest, "Unknown model"
	case errors.Is(err, ledgerdomain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "Insufficient credits"
	case errors.Is(err, profiledomain.ErrProfileNotFound):
		return http.StatusNotFound, "Profile not found"
	case errors.Is(err, checkoutdomain.ErrSessionNotFound):
		return http.StatusNotFound, "Checkout session not found"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, "Too many requests"
	case errors.Is(err, ErrGenerationInFlight):
		return http.StatusConflict, "A generation is already in progress"
	case errors.Is(err, generationdomain.ErrProviderFailure):
		return http.StatusBadGateway, "Failed to generate image"
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// classifyErrorForLog feeds the request logger's error fields without
// leaking internals into the response path.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited", "too_many_requests"
	case status >= http.StatusInternalServerError:
		return "internal", "internal_error"
	case status == http.StatusNotFound:
		return "not_found", err.Error()
	default:
		return "client", err.Error()
	}
}
