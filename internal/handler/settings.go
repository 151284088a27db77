package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type SettingsHandler struct {
	Settings *service.SystemSettingsService
}

func (h *SettingsHandler) Register(r gin.IRouter) {
	g := r.Group("/api/settings")
	g.GET("/app", h.get)
	g.PUT("/app", h.put)
}

// @Summary Get app settings
// @Tags settings
// @Produce json
// @Success 200 {object} service.AppSettings
// @Router /api/settings/app [get]
func (h *SettingsHandler) get(c *gin.Context) {
	out, err := h.Settings.App(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary Update app settings
// @Tags settings
// @Accept json
// @Produce json
// @Param body body service.AppSettings true "settings"
// @Success 200 {object} service.AppSettings
// @Router /api/settings/app [put]
func (h *SettingsHandler) put(c *gin.Context) {
	var in service.AppSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	out, err := h.Settings.UpdateApp(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}
