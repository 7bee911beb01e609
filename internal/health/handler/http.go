// Package handler exposes the health endpoint for load balancers and CI.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves GET /api/health.
type Handler struct{}

// NewHandler returns a new health handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes mounts the health route on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
