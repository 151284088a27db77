package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type StatsHandler struct {
	Stats    *service.StatsService
	Location *time.Location
}

func (h *StatsHandler) Register(r gin.IRouter) {
	g := r.Group("/api/stats")
	g.GET("/overview", h.overview)
	g.GET("/timeseries", h.timeseries)
}

// @Summary Stats overview
// @Description Overall, weekly and grouped stats for one filtered population.
// @Tags stats
// @Produce json
// @Param sport_id query int false "sport"
// @Param league_id query int false "league"
// @Param bookmaker_id query int false "bookmaker"
// @Param market_type_id query int false "market type"
// @Param is_live query bool false "live only"
// @Param status query string false "status"
// @Param date_from query string false "RFC3339 or YYYY-MM-DD"
// @Param date_to query string false "RFC3339 or YYYY-MM-DD"
// @Param odds_min query number false "min odds"
// @Param odds_max query number false "max odds"
// @Success 200 {object} analytics.Overview
// @Router /api/stats/overview [get]
func (h *StatsHandler) overview(c *gin.Context) {
	out, err := h.Stats.Overview(c.Request.Context(), filterFromQuery(c, h.Location))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary Daily profit timeseries
// @Tags stats
// @Produce json
// @Success 200 {array} analytics.TimeseriesPoint
// @Router /api/stats/timeseries [get]
func (h *StatsHandler) timeseries(c *gin.Context) {
	out, err := h.Stats.Timeseries(c.Request.Context(), filterFromQuery(c, h.Location))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}
