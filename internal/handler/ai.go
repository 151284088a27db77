package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type AIHandler struct {
	AI *service.AIService
}

func (h *AIHandler) Register(r gin.IRouter) {
	g := r.Group("/api/ai")
	g.POST("/analyze", h.analyze)
	g.GET("/analyses", h.history)
}

// @Summary AI analysis of stats
// @Tags ai
// @Accept json
// @Produce json
// @Param body body service.AnalyzeRequest false "filters and question"
// @Success 200 {object} service.AnalyzeResult
// @Router /api/ai/analyze [post]
func (h *AIHandler) analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	out, err := h.AI.Analyze(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary AI analysis history
// @Tags ai
// @Produce json
// @Param limit query int false "default 20"
// @Success 200 {array} models.AiAnalysis
// @Router /api/ai/analyses [get]
func (h *AIHandler) history(c *gin.Context) {
	items, err := h.AI.History(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}
