package analytics

import (
	"github.com/shopspring/decimal"

	"bettracker/internal/models"
)

type Outcome int

const (
	OutcomeOpen Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeVoid
)

var settledStatuses = map[string]struct{}{
	models.TicketStatusWon:      {},
	models.TicketStatusLost:     {},
	models.TicketStatusVoid:     {},
	models.TicketStatusHalfWin:  {},
	models.TicketStatusHalfLoss: {},
}

func IsSettled(status string) bool {
	_, ok := settledStatuses[status]
	return ok
}

func IsValidStatus(status string) bool {
	return status == models.TicketStatusOpen || IsSettled(status)
}

// OutcomeOf folds half results into their full counterparts.
func OutcomeOf(status string) Outcome {
	switch status {
	case models.TicketStatusWon, models.TicketStatusHalfWin:
		return OutcomeWin
	case models.TicketStatusLost, models.TicketStatusHalfLoss:
		return OutcomeLoss
	case models.TicketStatusVoid:
		return OutcomeVoid
	default:
		return OutcomeOpen
	}
}

// Settle derives the persisted (profit, payout) pair for a ticket. Win-type
// statuses need a payout; without one the profit stays unknown. Open tickets
// carry neither value.
func Settle(status string, stake decimal.Decimal, payout *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal) {
	switch status {
	case models.TicketStatusWon, models.TicketStatusHalfWin:
		if payout == nil {
			return nil, nil
		}
		p := *payout
		profit := p.Sub(stake)
		return &profit, &p
	case models.TicketStatusLost:
		profit := stake.Neg()
		zero := decimal.Zero
		return &profit, &zero
	case models.TicketStatusHalfLoss:
		half := stake.Div(decimal.NewFromInt(2))
		profit := half.Neg()
		return &profit, &half
	case models.TicketStatusVoid:
		zero := decimal.Zero
		p := stake
		return &zero, &p
	default:
		return nil, payout
	}
}

func settledOnly(tickets []models.Ticket) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if IsSettled(t.Status) {
			out = append(out, t)
		}
	}
	return out
}

func profitOf(t models.Ticket) decimal.Decimal {
	if t.Profit == nil {
		return decimal.Zero
	}
	return *t.Profit
}

func payoutOf(t models.Ticket) decimal.Decimal {
	if t.Payout == nil {
		return decimal.Zero
	}
	return *t.Payout
}
