package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type TicketHandler struct {
	Tickets  *service.TicketService
	Location *time.Location
}

func (h *TicketHandler) Register(r gin.IRouter) {
	g := r.Group("/api/tickets")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// @Summary Create ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body service.TicketInput true "ticket"
// @Success 200 {object} models.Ticket
// @Router /api/tickets [post]
func (h *TicketHandler) create(c *gin.Context) {
	var in service.TicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.Tickets.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Param sport_id query int false "sport"
// @Param status query string false "status"
// @Param date_from query string false "RFC3339 or YYYY-MM-DD"
// @Param date_to query string false "RFC3339 or YYYY-MM-DD"
// @Param sort_by query string false "created_at, odds, stake, profit, ..."
// @Param sort_dir query string false "asc or desc"
// @Param limit query int false "max 500"
// @Param offset query int false "offset"
// @Success 200 {array} models.Ticket
// @Router /api/tickets [get]
func (h *TicketHandler) list(c *gin.Context) {
	limit := intQuery(c, "limit", 100)
	if limit > 500 {
		limit = 500
	}
	offset := intQuery(c, "offset", 0)
	items, total, err := h.Tickets.List(c.Request.Context(), service.TicketQuery{
		Filter:  filterFromQuery(c, h.Location),
		SortBy:  c.Query("sort_by"),
		SortDir: c.DefaultQuery("sort_dir", "desc"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		fail(c, err)
		return
	}
	OkPage(c, items, limit, offset, total)
}

// @Summary Get ticket
// @Tags tickets
// @Produce json
// @Param id path int true "ticket id"
// @Success 200 {object} models.Ticket
// @Router /api/tickets/{id} [get]
func (h *TicketHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := h.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update ticket
// @Tags tickets
// @Accept json
// @Produce json
// @Param id path int true "ticket id"
// @Param body body service.TicketUpdate true "changed fields"
// @Success 200 {object} models.Ticket
// @Router /api/tickets/{id} [put]
func (h *TicketHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.TicketUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	item, err := h.Tickets.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete ticket
// @Tags tickets
// @Param id path int true "ticket id"
// @Success 200 {object} map[string]any
// @Router /api/tickets/{id} [delete]
func (h *TicketHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Tickets.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}
