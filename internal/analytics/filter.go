package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

// Filter is the sparse predicate set shared by every aggregation entry point.
// A nil field imposes no constraint. Ranges are inclusive on both ends.
type Filter struct {
	SportID      *uint64          `json:"sport_id,omitempty"`
	LeagueID     *uint64          `json:"league_id,omitempty"`
	BookmakerID  *uint64          `json:"bookmaker_id,omitempty"`
	MarketTypeID *uint64          `json:"market_type_id,omitempty"`
	IsLive       *bool            `json:"is_live,omitempty"`
	Status       *string          `json:"status,omitempty"`
	DateFrom     *time.Time       `json:"date_from,omitempty"`
	DateTo       *time.Time       `json:"date_to,omitempty"`
	OddsMin      *decimal.Decimal `json:"odds_min,omitempty"`
	OddsMax      *decimal.Decimal `json:"odds_max,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.SportID == nil && f.LeagueID == nil && f.BookmakerID == nil &&
		f.MarketTypeID == nil && f.IsLive == nil && f.Status == nil &&
		f.DateFrom == nil && f.DateTo == nil && f.OddsMin == nil && f.OddsMax == nil
}

// Match reports whether t satisfies every present predicate. A null ticket
// field only fails the predicate that targets it.
func (f Filter) Match(t models.Ticket) bool {
	if f.SportID != nil && t.SportID != *f.SportID {
		return false
	}
	if f.LeagueID != nil && (t.LeagueID == nil || *t.LeagueID != *f.LeagueID) {
		return false
	}
	if f.BookmakerID != nil && t.BookmakerID != *f.BookmakerID {
		return false
	}
	if f.MarketTypeID != nil && (t.MarketTypeID == nil || *t.MarketTypeID != *f.MarketTypeID) {
		return false
	}
	if f.IsLive != nil && t.IsLive != *f.IsLive {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DateFrom != nil && (t.CreatedAt == nil || t.CreatedAt.Before(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && (t.CreatedAt == nil || t.CreatedAt.After(*f.DateTo)) {
		return false
	}
	if f.OddsMin != nil && t.Odds.LessThan(*f.OddsMin) {
		return false
	}
	if f.OddsMax != nil && t.Odds.GreaterThan(*f.OddsMax) {
		return false
	}
	return true
}

// Apply returns the subset of tickets matching f, preserving order.
func (f Filter) Apply(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Window is a half-open creation-time interval [From, To) layered on top of
// a population that has already been filtered.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t models.Ticket) bool {
	if t.CreatedAt == nil {
		return false
	}
	ts := *t.CreatedAt
	return !ts.Before(w.From) && ts.Before(w.To)
}

func (w Window) Apply(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0)
	for _, t := range tickets {
		if w.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

// WeeklyWindows returns the rolling current [now-7d, now) and previous
// [now-14d, now-7d) windows.
func WeeklyWindows(now time.Time) (current Window, previous Window) {
	week := 7 * 24 * time.Hour
	current = Window{From: now.Add(-week), To: now}
	previous = Window{From: now.Add(-2 * week), To: now.Add(-week)}
	return current, previous
}
