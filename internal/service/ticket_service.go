package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

// TicketInput is the create payload. Profit is never accepted from the
// caller; it is derived from status, stake and payout.
type TicketInput struct {
	BookmakerID  uint64           `json:"bookmaker_id" validate:"required"`
	SportID      uint64           `json:"sport_id" validate:"required"`
	LeagueID     *uint64          `json:"league_id"`
	MarketTypeID *uint64          `json:"market_type_id"`
	HomeTeam     string           `json:"home_team" validate:"required,max=200"`
	AwayTeam     string           `json:"away_team" validate:"required,max=200"`
	EventDate    *time.Time       `json:"event_date"`
	MarketLabel  *string          `json:"market_label" validate:"omitempty,max=200"`
	Selection    *string          `json:"selection" validate:"omitempty,max=200"`
	Odds         decimal.Decimal  `json:"odds" validate:"gte=1"`
	Stake        decimal.Decimal  `json:"stake" validate:"gt=0"`
	Payout       *decimal.Decimal `json:"payout" validate:"omitempty,gte=0"`
	Status       string           `json:"status" validate:"omitempty,oneof=open won lost void half_win half_loss"`
	TicketType   string           `json:"ticket_type" validate:"omitempty,oneof=solo aku system"`
	IsLive       bool             `json:"is_live"`
	Source       string           `json:"source" validate:"omitempty,oneof=manual ocr"`
}

// TicketUpdate lists the mutable ticket fields. A nil field is left as is.
// Nullable columns use Optional so that an explicit null clears them.
type TicketUpdate struct {
	BookmakerID  *uint64                   `json:"bookmaker_id"`
	SportID      *uint64                   `json:"sport_id"`
	LeagueID     Optional[uint64]          `json:"league_id" swaggertype:"integer"`
	MarketTypeID Optional[uint64]          `json:"market_type_id" swaggertype:"integer"`
	HomeTeam     *string                   `json:"home_team"`
	AwayTeam     *string                   `json:"away_team"`
	EventDate    Optional[time.Time]       `json:"event_date" swaggertype:"string"`
	MarketLabel  Optional[string]          `json:"market_label" swaggertype:"string"`
	Selection    Optional[string]          `json:"selection" swaggertype:"string"`
	Odds         *decimal.Decimal          `json:"odds"`
	Stake        *decimal.Decimal          `json:"stake"`
	Payout       Optional[decimal.Decimal] `json:"payout" swaggertype:"string"`
	Status       *string                   `json:"status"`
	IsLive       *bool                     `json:"is_live"`
}

func (u TicketUpdate) applyTo(t *models.Ticket) {
	set(&t.BookmakerID, u.BookmakerID)
	set(&t.SportID, u.SportID)
	u.LeagueID.applyTo(&t.LeagueID)
	u.MarketTypeID.applyTo(&t.MarketTypeID)
	set(&t.HomeTeam, trimmed(u.HomeTeam))
	set(&t.AwayTeam, trimmed(u.AwayTeam))
	u.EventDate.applyTo(&t.EventDate)
	u.MarketLabel.applyTo(&t.MarketLabel)
	u.Selection.applyTo(&t.Selection)
	set(&t.Odds, u.Odds)
	set(&t.Stake, u.Stake)
	u.Payout.applyTo(&t.Payout)
	set(&t.Status, trimmed(u.Status))
	set(&t.IsLive, u.IsLive)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// TicketQuery drives the paginated ticket list.
type TicketQuery struct {
	Filter  analytics.Filter
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

type TicketService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TicketService) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *TicketService) Create(ctx context.Context, in TicketInput) (*models.Ticket, error) {
	in.HomeTeam = strings.TrimSpace(in.HomeTeam)
	in.AwayTeam = strings.TrimSpace(in.AwayTeam)
	if in.Status == "" {
		in.Status = models.TicketStatusOpen
	}
	if in.TicketType == "" {
		in.TicketType = models.TicketTypeSolo
	}
	if in.Source == "" {
		in.Source = models.TicketSourceManual
	}
	if err := fromValidator(validate.Struct(in)); err != nil {
		return nil, err
	}
	if err := checkWinPayout(in.Status, in.Payout); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in.BookmakerID, in.SportID, in.LeagueID, in.MarketTypeID); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.Ticket{
		BookmakerID:  in.BookmakerID,
		SportID:      in.SportID,
		LeagueID:     in.LeagueID,
		MarketTypeID: in.MarketTypeID,
		HomeTeam:     in.HomeTeam,
		AwayTeam:     in.AwayTeam,
		EventDate:    in.EventDate,
		MarketLabel:  in.MarketLabel,
		Selection:    in.Selection,
		Odds:         in.Odds,
		Stake:        in.Stake,
		Payout:       in.Payout,
		Status:       in.Status,
		TicketType:   in.TicketType,
		IsLive:       in.IsLive,
		Source:       in.Source,
		CreatedAt:    &now,
	}
	s.settle(item, now)
	if err := s.Repo.CreateTicket(ctx, item); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	s.log().Info("ticket created", zap.Uint64("id", item.ID), zap.String("status", item.Status))
	return s.Get(ctx, item.ID)
}

func (s *TicketService) Update(ctx context.Context, id uint64, u TicketUpdate) (*models.Ticket, error) {
	item, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	prevStatus := item.Status
	u.applyTo(item)
	// Preloaded associations would otherwise win over cleared ids on save.
	item.Bookmaker, item.Sport, item.League, item.MarketType = nil, nil, nil, nil

	check := TicketInput{
		BookmakerID: item.BookmakerID,
		SportID:     item.SportID,
		HomeTeam:    item.HomeTeam,
		AwayTeam:    item.AwayTeam,
		MarketLabel: item.MarketLabel,
		Selection:   item.Selection,
		Odds:        item.Odds,
		Stake:       item.Stake,
		Payout:      item.Payout,
		Status:      item.Status,
		TicketType:  item.TicketType,
		Source:      item.Source,
	}
	if item.Status == "" {
		return nil, invalid("status", "must not be empty")
	}
	if err := fromValidator(validate.Struct(check)); err != nil {
		return nil, err
	}
	// A loss or void leaves a derived payout behind that does not describe a win.
	if isWin(item.Status) && item.Status != prevStatus && analytics.IsSettled(prevStatus) && !u.Payout.Set {
		return nil, invalid("payout", "required when changing a %s ticket to %s", prevStatus, item.Status)
	}
	if err := checkWinPayout(item.Status, item.Payout); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, item.BookmakerID, item.SportID, item.LeagueID, item.MarketTypeID); err != nil {
		return nil, err
	}

	s.settle(item, s.now())
	if err := s.Repo.SaveTicket(ctx, item); err != nil {
		return nil, fmt.Errorf("save ticket %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

func isWin(status string) bool {
	return analytics.OutcomeOf(status) == analytics.OutcomeWin
}

// checkWinPayout rejects a won or half-won ticket whose payout is not
// positive. A missing payout is allowed and leaves the profit unknown.
func checkWinPayout(status string, payout *decimal.Decimal) error {
	if isWin(status) && payout != nil && !payout.IsPositive() {
		return invalid("payout", "must be positive for %s", status)
	}
	return nil
}

// settle recomputes the persisted profit and payout and stamps settled_at the
// first time a ticket leaves open.
func (s *TicketService) settle(item *models.Ticket, now time.Time) {
	item.Profit, item.Payout = analytics.Settle(item.Status, item.Stake, item.Payout)
	switch {
	case !analytics.IsSettled(item.Status):
		item.SettledAt = nil
	case item.SettledAt == nil:
		item.SettledAt = &now
	}
}

func (s *TicketService) checkRefs(ctx context.Context, bookmakerID, sportID uint64, leagueID, marketTypeID *uint64) error {
	bookmaker, err := s.Repo.GetBookmaker(ctx, bookmakerID)
	if err != nil {
		return err
	}
	if bookmaker == nil {
		return invalid("bookmaker_id", "unknown bookmaker %d", bookmakerID)
	}
	sport, err := s.Repo.GetSport(ctx, sportID)
	if err != nil {
		return err
	}
	if sport == nil {
		return invalid("sport_id", "unknown sport %d", sportID)
	}
	if leagueID != nil {
		league, err := s.Repo.GetLeague(ctx, *leagueID)
		if err != nil {
			return err
		}
		if league == nil {
			return invalid("league_id", "unknown league %d", *leagueID)
		}
	}
	if marketTypeID != nil {
		mt, err := s.Repo.GetMarketType(ctx, *marketTypeID)
		if err != nil {
			return err
		}
		if mt == nil {
			return invalid("market_type_id", "unknown market type %d", *marketTypeID)
		}
	}
	return nil
}

func (s *TicketService) Get(ctx context.Context, id uint64) (*models.Ticket, error) {
	item, err := s.Repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *TicketService) Delete(ctx context.Context, id uint64) error {
	ok, err := s.Repo.DeleteTicket(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	s.log().Info("ticket deleted", zap.Uint64("id", id))
	return nil
}

// List returns one page plus the total row count for the filter.
func (s *TicketService) List(ctx context.Context, q TicketQuery) ([]models.Ticket, int64, error) {
	asc := strings.EqualFold(strings.TrimSpace(q.SortDir), "asc")
	items, err := s.Repo.ListTickets(ctx, repository.ListTicketsParams{
		Filter:  q.Filter,
		Limit:   q.Limit,
		Offset:  q.Offset,
		OrderBy: strings.TrimSpace(q.SortBy),
		Asc:     &asc,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountTickets(ctx, q.Filter)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Ticket{}
	}
	return items, total, nil
}
