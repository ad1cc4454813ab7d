package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	Ping func(ctx context.Context) error
}

func (h SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h SystemHandler) DBCheck(c *gin.Context) {
	if h.Ping == nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database not connected")
		return
	}
	if err := h.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database connection failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "database connection OK"})
}
