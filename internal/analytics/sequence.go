package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

// SortChronological returns a copy ordered by creation time ascending.
// Tickets without a timestamp come first; ties keep their input order.
func SortChronological(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		if a == nil {
			return b != nil
		}
		if b == nil {
			return false
		}
		return a.Before(*b)
	})
	return out
}

// Streaks walks settled tickets in chronological order. Only won and lost
// extend a run; void and half results break both.
func Streaks(settled []models.Ticket) (current, best, worst int) {
	wins, losses := 0, 0
	for _, t := range settled {
		switch t.Status {
		case models.TicketStatusWon:
			wins++
			losses = 0
			if wins > best {
				best = wins
			}
		case models.TicketStatusLost:
			losses++
			wins = 0
			if losses > worst {
				worst = losses
			}
		default:
			wins, losses = 0, 0
		}
	}
	switch {
	case wins > 0:
		current = wins
	case losses > 0:
		current = -losses
	}
	return current, best, worst
}

// Drawdown returns the largest peak-to-trough decline of cumulative profit and
// that decline as a percentage of the settled stake. The peak starts at zero.
func Drawdown(settled []models.Ticket) (decimal.Decimal, float64) {
	cumulative := decimal.Zero
	peak := decimal.Zero
	maxDD := decimal.Zero
	stake := decimal.Zero
	for _, t := range settled {
		stake = stake.Add(t.Stake)
		cumulative = cumulative.Add(profitOf(t))
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD, percent(maxDD, stake)
}

// Overall computes the summary block for a population.
func Overall(population []models.Ticket) OverallStats {
	out := OverallStats{
		StakeTotal:  decimal.Zero,
		ProfitTotal: decimal.Zero,
		PayoutTotal: decimal.Zero,
		MaxDrawdown: decimal.Zero,
	}
	if len(population) == 0 {
		return out
	}

	oddsSum := decimal.Zero
	for _, t := range population {
		out.StakeTotal = out.StakeTotal.Add(t.Stake)
		oddsSum = oddsSum.Add(t.Odds)
	}
	out.BetsCount = len(population)
	out.AvgOdds = mean(oddsSum, len(population))

	settled := SortChronological(settledOnly(population))
	won := 0
	for _, t := range settled {
		out.ProfitTotal = out.ProfitTotal.Add(profitOf(t))
		out.PayoutTotal = out.PayoutTotal.Add(payoutOf(t))
		if t.Status == models.TicketStatusWon {
			won++
		}
	}
	out.ROIPercent = percent(out.ProfitTotal, out.StakeTotal)
	out.HitRatePercent = percent(decimal.NewFromInt(int64(won)), decimal.NewFromInt(int64(len(settled))))
	out.CurrentStreak, out.BestStreak, out.WorstStreak = Streaks(settled)
	out.MaxDrawdown, out.MaxDrawdownPercent = Drawdown(settled)
	return out
}
