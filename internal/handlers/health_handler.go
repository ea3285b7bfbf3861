package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/physiocare-api/internal/utils"
)

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check: database unreachable")
			utils.RespondMessage(c, http.StatusServiceUnavailable, "Database unavailable.")
			return
		}
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"status": "up"})
}
