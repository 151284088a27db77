package handler

import (
	"github.com/gin-gonic/gin"

	"bettracker/internal/models"
	"bettracker/internal/repository"
)

type MetaHandler struct {
	Repo repository.LookupRepository
}

func (h *MetaHandler) Register(r gin.IRouter) {
	g := r.Group("/api/meta")
	g.GET("/sports", h.sports)
	g.GET("/leagues", h.leagues)
	g.GET("/bookmakers", h.bookmakers)
}

// @Summary List sports
// @Tags meta
// @Produce json
// @Success 200 {array} models.Sport
// @Router /api/meta/sports [get]
func (h *MetaHandler) sports(c *gin.Context) {
	items, err := h.Repo.ListSports(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []models.Sport{}
	}
	Ok(c, items, nil)
}

// @Summary List leagues
// @Tags meta
// @Produce json
// @Param sport_id query int false "sport"
// @Success 200 {array} models.League
// @Router /api/meta/leagues [get]
func (h *MetaHandler) leagues(c *gin.Context) {
	items, err := h.Repo.ListLeagues(c.Request.Context(), uint64QueryPtr(c, "sport_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []models.League{}
	}
	Ok(c, items, nil)
}

// @Summary List bookmakers
// @Tags meta
// @Produce json
// @Success 200 {array} models.Bookmaker
// @Router /api/meta/bookmakers [get]
func (h *MetaHandler) bookmakers(c *gin.Context) {
	items, err := h.Repo.ListBookmakers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if items == nil {
		items = []models.Bookmaker{}
	}
	Ok(c, items, nil)
}
