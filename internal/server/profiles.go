package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/tambiyash/image-lizard/internal/profile/domain"
)

type createProfileRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// CreateProfile is the registration hook. Re-posting the same user id
// returns the existing profile unchanged.
func (s *Server) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, profiledomain.ErrInvalidUserID)
		return
	}

	profile, err := s.profileSvc.Create(c.Request.Context(), profiledomain.CreateProfileRequest{
		ID:       strings.TrimSpace(req.UserID),
		Username: strings.TrimSpace(req.Username),
		FullName: strings.TrimSpace(req.FullName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, profile)
}

func (s *Server) GetProfileByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, ErrUserIDRequired)
		return
	}

	profile, err := s.profileSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, profile)
}
