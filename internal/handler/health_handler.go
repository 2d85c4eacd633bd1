package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker は依存先の疎通確認
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler はヘルスチェックのハンドラー
type HealthHandler struct {
	service  string
	checkers map[string]HealthChecker
}

// NewHealthHandler は新しいHealthHandlerを作成（checkersはnil可）
func NewHealthHandler(service string, checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{service: service, checkers: checkers}
}

// GetHealth GET /api/health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{}
	for name, checker := range h.checkers {
		if err := checker.HealthCheck(ctx); err != nil {
			status = "degraded"
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"service":      h.service,
		"dependencies": deps,
	})
}
