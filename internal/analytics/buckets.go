package analytics

import (
	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

// OddsBucket is a closed odds interval.
type OddsBucket struct {
	Label string
	Min   decimal.Decimal
	Max   decimal.Decimal
}

var DefaultOddsBuckets = []OddsBucket{
	{Label: "1.01-1.50", Min: decimal.RequireFromString("1.01"), Max: decimal.RequireFromString("1.50")},
	{Label: "1.51-2.00", Min: decimal.RequireFromString("1.51"), Max: decimal.RequireFromString("2.00")},
	{Label: "2.01-3.00", Min: decimal.RequireFromString("2.01"), Max: decimal.RequireFromString("3.00")},
	{Label: "3.01-5.00", Min: decimal.RequireFromString("3.01"), Max: decimal.RequireFromString("5.00")},
	{Label: "5.01+", Min: decimal.RequireFromString("5.01"), Max: decimal.RequireFromString("999")},
}

func (b OddsBucket) Contains(odds decimal.Decimal) bool {
	return odds.GreaterThanOrEqual(b.Min) && odds.LessThanOrEqual(b.Max)
}

// ByOddsBucket places each ticket in the first bucket that contains its odds.
// Tickets outside every bucket are dropped and empty buckets are omitted.
func ByOddsBucket(tickets []models.Ticket, buckets []OddsBucket) []GroupedStat {
	if len(buckets) == 0 {
		buckets = DefaultOddsBuckets
	}
	accs := make([]groupAcc, len(buckets))
	for i := range accs {
		accs[i] = groupAcc{stake: decimal.Zero, profit: decimal.Zero, oddsSum: decimal.Zero}
	}
	for _, t := range tickets {
		for i, b := range buckets {
			if b.Contains(t.Odds) {
				accs[i].add(t)
				break
			}
		}
	}
	out := make([]GroupedStat, 0, len(buckets))
	for i, b := range buckets {
		if accs[i].bets == 0 {
			continue
		}
		out = append(out, accs[i].stat(b.Label))
	}
	return out
}
