package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bettracker/internal/analytics"
)

const dateOnly = "2006-01-02"

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func uint64QueryPtr(c *gin.Context, key string) *uint64 {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}

func decimalQueryPtr(c *gin.Context, key string) *decimal.Decimal {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(val, ",", "."))
	if err != nil {
		return nil
	}
	return &d
}

// timeQueryPtr accepts RFC3339 or a bare date. A bare date is read in loc;
// with endOfDay it covers the whole day.
func timeQueryPtr(c *gin.Context, key string, loc *time.Location, endOfDay bool) *time.Time {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, val); err == nil {
		return &ts
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateOnly, val, loc)
	if err != nil {
		return nil
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day
}

// filterFromQuery reads the shared filter parameters. A malformed value is
// dropped and imposes no constraint.
func filterFromQuery(c *gin.Context, loc *time.Location) analytics.Filter {
	f := analytics.Filter{
		SportID:      uint64QueryPtr(c, "sport_id"),
		LeagueID:     uint64QueryPtr(c, "league_id"),
		BookmakerID:  uint64QueryPtr(c, "bookmaker_id"),
		MarketTypeID: uint64QueryPtr(c, "market_type_id"),
		IsLive:       boolQueryPtr(c, "is_live"),
		DateFrom:     timeQueryPtr(c, "date_from", loc, false),
		DateTo:       timeQueryPtr(c, "date_to", loc, true),
		OddsMin:      decimalQueryPtr(c, "odds_min"),
		OddsMax:      decimalQueryPtr(c, "odds_max"),
	}
	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); analytics.IsValidStatus(status) {
		f.Status = &status
	}
	return f
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}
