package analytics

import (
	"time"

	"bettracker/internal/models"
)

// Composer turns one filtered population into the overview and timeseries
// payloads. It holds no per-request state.
type Composer struct {
	// Location decides calendar days, weekdays and months. Nil keeps each
	// timestamp's own zone.
	Location *time.Location
	Buckets  []OddsBucket
	// Category labels a ticket for the by_bet_category breakdown. The
	// breakdown is empty when nil.
	Category func(models.Ticket) string
}

// Compose builds every block of the overview from the same population.
// bookmakers seeds the bookmaker breakdown.
func (c Composer) Compose(population []models.Ticket, bookmakers []string, now time.Time) Overview {
	current, previous := WeeklyWindows(now)

	out := Overview{
		Overall: Overall(population),
		Weekly: WeeklyStats{
			CurrentWeek: Overall(current.Apply(population)),
			LastWeek:    Overall(previous.Apply(population)),
		},
		BySport:        BySport(population),
		ByBookmaker:    ByBookmaker(population, bookmakers),
		ByLeague:       ByLeague(population),
		ByMarketType:   ByMarketType(population),
		ByBetCategory:  []GroupedStat{},
		ByOddsBucket:   ByOddsBucket(population, c.Buckets),
		ByMonth:        ByMonth(population, c.Location),
		ByWeekday:      ByWeekday(population, c.Location),
		LiveVsPrematch: LiveVsPrematch(population),
	}
	if c.Category != nil {
		out.ByBetCategory = GroupBy(population, c.Category)
	}
	return out
}

func (c Composer) Timeseries(population []models.Ticket) []TimeseriesPoint {
	return Timeseries(population, c.Location)
}
