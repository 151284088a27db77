package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type MarketTypeHandler struct {
	MarketTypes *service.MarketTypeService
}

func (h *MarketTypeHandler) Register(r gin.IRouter) {
	g := r.Group("/api/market-types")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/stats", h.stats)
	g.GET("/top", h.top)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// @Summary List active market types
// @Tags market-types
// @Produce json
// @Success 200 {array} models.MarketType
// @Router /api/market-types [get]
func (h *MarketTypeHandler) list(c *gin.Context) {
	items, err := h.MarketTypes.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Market type stats
// @Tags market-types
// @Produce json
// @Success 200 {array} service.MarketTypeStat
// @Router /api/market-types/stats [get]
func (h *MarketTypeHandler) stats(c *gin.Context) {
	items, err := h.MarketTypes.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Most used market types
// @Tags market-types
// @Produce json
// @Param limit query int false "default 5"
// @Param sport_id query int false "sport"
// @Success 200 {array} models.MarketType
// @Router /api/market-types/top [get]
func (h *MarketTypeHandler) top(c *gin.Context) {
	items, err := h.MarketTypes.Top(c.Request.Context(), uint64QueryPtr(c, "sport_id"), intQuery(c, "limit", 5))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, items, nil)
}

// @Summary Create market type
// @Tags market-types
// @Accept json
// @Produce json
// @Param body body service.MarketTypeInput true "market type"
// @Success 200 {object} models.MarketType
// @Router /api/market-types [post]
func (h *MarketTypeHandler) create(c *gin.Context) {
	var in service.MarketTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.MarketTypes.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update market type
// @Tags market-types
// @Accept json
// @Produce json
// @Param id path int true "market type id"
// @Param body body service.MarketTypeUpdate true "changed fields"
// @Success 200 {object} models.MarketType
// @Router /api/market-types/{id} [put]
func (h *MarketTypeHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.MarketTypeUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.MarketTypes.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete or deactivate market type
// @Tags market-types
// @Param id path int true "market type id"
// @Success 200 {object} map[string]any
// @Router /api/market-types/{id} [delete]
func (h *MarketTypeHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	deleted, err := h.MarketTypes.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"id": id, "deleted": deleted, "deactivated": !deleted}, nil)
}
