package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/auth"
)

type AuthHandler struct {
	JWT      auth.JWT
	Password string
}

type tokenRequest struct {
	Password string `json:"password"`
}

func (h *AuthHandler) Register(r gin.IRouter) {
	r.POST("/api/auth/token", h.token)
}

// @Summary Exchange the password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body tokenRequest true "password"
// @Success 200 {object} map[string]any
// @Router /api/auth/token [post]
func (h *AuthHandler) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	token, expiresAt, err := auth.Login(h.JWT, h.Password, req.Password)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled):
		Error(c, http.StatusNotFound, "login disabled", nil)
		return
	case errors.Is(err, auth.ErrBadCredentials):
		Error(c, http.StatusUnauthorized, "bad credentials", nil)
		return
	case err != nil:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"access_token": token, "token_type": "Bearer", "expires_at": expiresAt}, nil)
}
