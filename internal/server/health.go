package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) registerHealthRoutes() {
	s.engine.GET("/health/db", s.HealthDB)
}

// HealthDB runs one capability probe against the configured database. It is
// a connectivity check, not a schema audit; migrations own the schema.
func (s *Server) HealthDB(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Error("database health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"latency_ms": time.Since(start).Milliseconds(),
	})
}
