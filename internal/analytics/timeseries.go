package analytics

import (
	"sort"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

// timeseriesStatuses excludes void: it neither wins nor loses money.
var timeseriesStatuses = map[string]struct{}{
	models.TicketStatusWon:      {},
	models.TicketStatusLost:     {},
	models.TicketStatusHalfWin:  {},
	models.TicketStatusHalfLoss: {},
}

// Timeseries sums profit per calendar day and carries the running total.
// Days sort lexically, so the Unknown day lands after every dated one.
func Timeseries(population []models.Ticket, loc *time.Location) []TimeseriesPoint {
	type day struct {
		profit decimal.Decimal
		count  int
	}
	days := make(map[string]*day)
	for _, t := range SortChronological(population) {
		if _, ok := timeseriesStatuses[t.Status]; !ok {
			continue
		}
		key := LabelUnknown
		if t.CreatedAt != nil {
			key = civil.DateOf(localTime(*t.CreatedAt, loc)).String()
		}
		d, ok := days[key]
		if !ok {
			d = &day{profit: decimal.Zero}
			days[key] = d
		}
		d.profit = d.profit.Add(profitOf(t))
		d.count++
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]TimeseriesPoint, 0, len(keys))
	cumulative := decimal.Zero
	for _, k := range keys {
		d := days[k]
		cumulative = cumulative.Add(d.profit)
		out = append(out, TimeseriesPoint{
			Date:             k,
			Profit:           d.profit,
			CumulativeProfit: cumulative,
			BetsCount:        d.count,
		})
	}
	return out
}
