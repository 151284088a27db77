// Package memrepo is an in-memory repository.Repository. It backs service and
// handler tests and mirrors the gorm store's ordering and not-found rules.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

type Repo struct {
	mu sync.Mutex

	Tickets     []models.Ticket
	Sports      []models.Sport
	Leagues     []models.League
	Bookmakers  []models.Bookmaker
	MarketTypes []models.MarketType
	Analyses    []models.AiAnalysis
	Settings    []models.SystemSetting

	nextID uint64
}

var _ repository.Repository = (*Repo)(nil)

func New() *Repo {
	return &Repo{nextID: 1000}
}

func (r *Repo) id() uint64 {
	r.nextID++
	return r.nextID
}

// --- tickets ----------------------------------------------------------------

func (r *Repo) CreateTicket(_ context.Context, item *models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = r.id()
	}
	if item.CreatedAt == nil {
		now := time.Now().UTC()
		item.CreatedAt = &now
	}
	r.Tickets = append(r.Tickets, stripTicket(*item))
	return nil
}

func (r *Repo) SaveTicket(ctx context.Context, item *models.Ticket) error {
	r.mu.Lock()
	for i := range r.Tickets {
		if r.Tickets[i].ID == item.ID {
			r.Tickets[i] = stripTicket(*item)
			r.mu.Unlock()
			return nil
		}
	}
	r.mu.Unlock()
	return r.CreateTicket(ctx, item)
}

func (r *Repo) DeleteTicket(_ context.Context, id uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Tickets {
		if r.Tickets[i].ID == id {
			r.Tickets = append(r.Tickets[:i], r.Tickets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) GetTicket(_ context.Context, id uint64) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.Tickets {
		if t.ID == id {
			out := r.withLookups(t)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Repo) ListTickets(_ context.Context, params repository.ListTicketsParams) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.filtered(params.Filter)
	asc := params.Asc != nil && *params.Asc
	less := ticketLess(params.OrderBy)
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []models.Ticket{}, nil
	}
	items = items[offset:]
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *Repo) CountTickets(_ context.Context, filter analytics.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

func (r *Repo) ListTicketsForStats(_ context.Context, filter analytics.Filter) ([]models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return analytics.SortChronological(r.filtered(filter)), nil
}

func (r *Repo) filtered(filter analytics.Filter) []models.Ticket {
	out := make([]models.Ticket, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		if filter.Match(t) {
			out = append(out, r.withLookups(t))
		}
	}
	return out
}

func (r *Repo) withLookups(t models.Ticket) models.Ticket {
	for i := range r.Bookmakers {
		if r.Bookmakers[i].ID == t.BookmakerID {
			b := r.Bookmakers[i]
			t.Bookmaker = &b
		}
	}
	for i := range r.Sports {
		if r.Sports[i].ID == t.SportID {
			s := r.Sports[i]
			t.Sport = &s
		}
	}
	if t.LeagueID != nil {
		for i := range r.Leagues {
			if r.Leagues[i].ID == *t.LeagueID {
				l := r.Leagues[i]
				t.League = &l
			}
		}
	}
	if t.MarketTypeID != nil {
		for i := range r.MarketTypes {
			if r.MarketTypes[i].ID == *t.MarketTypeID {
				m := r.MarketTypes[i]
				t.MarketType = &m
			}
		}
	}
	return t
}

func stripTicket(t models.Ticket) models.Ticket {
	t.Bookmaker, t.Sport, t.League, t.MarketType = nil, nil, nil, nil
	return t
}

func ticketLess(orderBy string) func(a, b models.Ticket) bool {
	switch strings.TrimSpace(orderBy) {
	case "id":
		return func(a, b models.Ticket) bool { return a.ID < b.ID }
	case "odds":
		return func(a, b models.Ticket) bool { return a.Odds.LessThan(b.Odds) }
	case "stake":
		return func(a, b models.Ticket) bool { return a.Stake.LessThan(b.Stake) }
	case "profit":
		return func(a, b models.Ticket) bool { return decOrZero(a.Profit).LessThan(decOrZero(b.Profit)) }
	case "status":
		return func(a, b models.Ticket) bool { return a.Status < b.Status }
	default:
		return func(a, b models.Ticket) bool {
			if a.CreatedAt == nil || b.CreatedAt == nil {
				return a.CreatedAt == nil && b.CreatedAt != nil
			}
			if a.CreatedAt.Equal(*b.CreatedAt) {
				return a.ID < b.ID
			}
			return a.CreatedAt.Before(*b.CreatedAt)
		}
	}
}

func decOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// --- lookups ----------------------------------------------------------------

func (r *Repo) ListSports(context.Context) ([]models.Sport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Sport(nil), r.Sports...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repo) ListLeagues(_ context.Context, sportID *uint64) ([]models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.League, 0, len(r.Leagues))
	for _, l := range r.Leagues {
		if sportID == nil || l.SportID == *sportID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repo) ListBookmakers(context.Context) ([]models.Bookmaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.Bookmaker(nil), r.Bookmakers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repo) GetSport(_ context.Context, id uint64) (*models.Sport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Sports {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *Repo) GetLeague(_ context.Context, id uint64) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.Leagues {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *Repo) GetBookmaker(_ context.Context, id uint64) (*models.Bookmaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.Bookmakers {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

// --- market types -----------------------------------------------------------

func (r *Repo) ListMarketTypes(_ context.Context, params repository.ListMarketTypesParams) ([]models.MarketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.MarketType, 0, len(r.MarketTypes))
	for _, m := range r.MarketTypes {
		if params.ActiveOnly && !m.IsActive {
			continue
		}
		if params.SportID != nil && !hasSport(m, *params.SportID) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func hasSport(m models.MarketType, sportID uint64) bool {
	for _, s := range m.Sports {
		if s.ID == sportID {
			return true
		}
	}
	return false
}

func (r *Repo) ListMarketTypesByIDs(_ context.Context, ids []uint64) ([]models.MarketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.MarketType, 0, len(ids))
	for _, m := range r.MarketTypes {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (r *Repo) GetMarketType(_ context.Context, id uint64) (*models.MarketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.MarketTypes {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *Repo) GetMarketTypeByName(_ context.Context, name string) (*models.MarketType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.MarketTypes {
		if m.Name == strings.TrimSpace(name) {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *Repo) SaveMarketType(_ context.Context, item *models.MarketType, sportIDs []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sportIDs != nil {
		item.Sports = []models.Sport{}
		for _, s := range r.Sports {
			if len(sportIDs) == 0 || containsID(sportIDs, s.ID) {
				item.Sports = append(item.Sports, s)
			}
		}
	}
	if item.ID == 0 {
		item.ID = r.id()
		r.MarketTypes = append(r.MarketTypes, *item)
		return nil
	}
	for i := range r.MarketTypes {
		if r.MarketTypes[i].ID == item.ID {
			if sportIDs == nil {
				item.Sports = r.MarketTypes[i].Sports
			}
			r.MarketTypes[i] = *item
			return nil
		}
	}
	r.MarketTypes = append(r.MarketTypes, *item)
	return nil
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *Repo) DeleteMarketType(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.MarketTypes {
		if r.MarketTypes[i].ID == id {
			r.MarketTypes = append(r.MarketTypes[:i], r.MarketTypes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *Repo) CountTicketsByMarketType(_ context.Context, id uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.Tickets {
		if t.MarketTypeID != nil && *t.MarketTypeID == id {
			n++
		}
	}
	return n, nil
}

func (r *Repo) MarketTypeUsage(context.Context) ([]repository.MarketTypeUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := map[uint64]int{}
	var out []repository.MarketTypeUsage
	for _, t := range r.Tickets {
		if t.MarketTypeID == nil {
			continue
		}
		i, ok := index[*t.MarketTypeID]
		if !ok {
			i = len(out)
			index[*t.MarketTypeID] = i
			out = append(out, repository.MarketTypeUsage{MarketTypeID: *t.MarketTypeID})
		}
		out[i].Bets++
		switch t.Status {
		case models.TicketStatusWon:
			out[i].Won++
		case models.TicketStatusHalfWin:
			out[i].HalfWin++
		}
		out[i].Profit = out[i].Profit.Add(decOrZero(t.Profit))
	}
	return out, nil
}

func (r *Repo) TopMarketTypeIDs(_ context.Context, sportID *uint64, limit int) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uses := map[uint64]int{}
	for _, t := range r.Tickets {
		if t.MarketTypeID == nil || (sportID != nil && t.SportID != *sportID) {
			continue
		}
		uses[*t.MarketTypeID]++
	}
	ids := make([]uint64, 0, len(uses))
	for id := range uses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if uses[ids[i]] != uses[ids[j]] {
			return uses[ids[i]] > uses[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if limit <= 0 {
		limit = 5
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// --- ai analyses ------------------------------------------------------------

func (r *Repo) InsertAiAnalysis(_ context.Context, item *models.AiAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == 0 {
		item.ID = r.id()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	r.Analyses = append(r.Analyses, *item)
	return nil
}

func (r *Repo) ListAiAnalyses(_ context.Context, params repository.ListAiAnalysesParams) ([]models.AiAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]models.AiAnalysis(nil), r.Analyses...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return []models.AiAnalysis{}, nil
		}
		out = out[params.Offset:]
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) DeleteAiAnalysesBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.Analyses[:0]
	var n int64
	for _, a := range r.Analyses {
		if a.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.Analyses = kept
	return n, nil
}

// --- system settings --------------------------------------------------------

func (r *Repo) UpsertSystemSetting(_ context.Context, item *models.SystemSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Settings {
		if r.Settings[i].Key == item.Key {
			r.Settings[i].Value = item.Value
			r.Settings[i].Description = item.Description
			r.Settings[i].UpdatedAt = item.UpdatedAt
			return nil
		}
	}
	if item.ID == 0 {
		item.ID = r.id()
	}
	r.Settings = append(r.Settings, *item)
	return nil
}

func (r *Repo) GetSystemSettingByKey(_ context.Context, key string) (*models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.Settings {
		if s.Key == strings.TrimSpace(key) {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *Repo) ListSystemSettings(_ context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SystemSetting, 0, len(r.Settings))
	for _, s := range r.Settings {
		if params.Prefix != nil && !strings.HasPrefix(s.Key, *params.Prefix) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
