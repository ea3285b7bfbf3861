package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/physiocare-api/internal/middleware"
	"github.com/harentsoaR/physiocare-api/internal/services"
	"github.com/harentsoaR/physiocare-api/internal/utils"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}

	token, err := h.Auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondField(c, http.StatusOK, "token", token)
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		utils.RespondMessage(c, http.StatusForbidden, "Access denied: no token provided.")
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), claims); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Logged out.")
}

// GetCurrentUser returns the account behind the bearer token.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		utils.RespondMessage(c, http.StatusForbidden, "Access denied: no token provided.")
		return
	}
	user, err := h.Auth.Me(c.Request.Context(), claims)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, user)
}

// RegisterUser provisions an account. The route is admin only.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, invalidBody)
		return
	}
	user, err := h.Auth.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, user)
}
