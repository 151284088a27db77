package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bettracker/internal/models"
	"bettracker/internal/repository"
)

type MarketTypeInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=500"`
	IsActive    *bool    `json:"is_active"`
	SportIDs    []uint64 `json:"sport_ids"`
}

type MarketTypeUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	Description Optional[string] `json:"description" swaggertype:"string"`
	IsActive    *bool            `json:"is_active"`
	SportIDs    []uint64         `json:"sport_ids"`
}

// MarketTypeStat is one market type with its ticket record. WinRate counts a
// half win as half a win.
type MarketTypeStat struct {
	models.MarketType
	BetsCount int             `json:"bets_count"`
	WinRate   float64         `json:"win_rate"`
	Profit    decimal.Decimal `json:"profit"`
}

type MarketTypeService struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (s *MarketTypeService) ListActive(ctx context.Context) ([]models.MarketType, error) {
	items, err := s.Repo.ListMarketTypes(ctx, repository.ListMarketTypesParams{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MarketType{}
	}
	return items, nil
}

// Stats lists every market type, used or not, most used first.
func (s *MarketTypeService) Stats(ctx context.Context) ([]MarketTypeStat, error) {
	types, err := s.Repo.ListMarketTypes(ctx, repository.ListMarketTypesParams{})
	if err != nil {
		return nil, err
	}
	usage, err := s.Repo.MarketTypeUsage(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]repository.MarketTypeUsage, len(usage))
	for _, u := range usage {
		byID[u.MarketTypeID] = u
	}
	out := make([]MarketTypeStat, 0, len(types))
	for _, mt := range types {
		row := MarketTypeStat{MarketType: mt, Profit: decimal.Zero}
		if u, ok := byID[mt.ID]; ok && u.Bets > 0 {
			row.BetsCount = int(u.Bets)
			wins := decimal.NewFromInt(u.Won).Add(decimal.NewFromInt(u.HalfWin).Div(decimal.NewFromInt(2)))
			rate, _ := wins.Div(decimal.NewFromInt(u.Bets)).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			row.WinRate = rate
			row.Profit = u.Profit.Round(2)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BetsCount > out[j].BetsCount })
	return out, nil
}

// Top returns the most used market types, optionally for one sport. With no
// usage yet it falls back to active types in name order.
func (s *MarketTypeService) Top(ctx context.Context, sportID *uint64, limit int) ([]models.MarketType, error) {
	if limit <= 0 {
		limit = 5
	}
	ids, err := s.Repo.TopMarketTypeIDs(ctx, sportID, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return s.Repo.ListMarketTypes(ctx, repository.ListMarketTypesParams{ActiveOnly: true, SportID: sportID, Limit: limit})
	}
	items, err := s.Repo.ListMarketTypesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	rank := make(map[uint64]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(items, func(i, j int) bool { return rank[items[i].ID] < rank[items[j].ID] })
	return items, nil
}

func (s *MarketTypeService) Create(ctx context.Context, in MarketTypeInput) (*models.MarketType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := fromValidator(validate.Struct(in)); err != nil {
		return nil, err
	}
	existing, err := s.Repo.GetMarketTypeByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid("name", "market type %q already exists", in.Name)
	}
	item := &models.MarketType{Name: in.Name, Description: in.Description, IsActive: true}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	sportIDs := in.SportIDs
	if sportIDs == nil {
		sportIDs = []uint64{}
	}
	if err := s.Repo.SaveMarketType(ctx, item, sportIDs); err != nil {
		return nil, fmt.Errorf("create market type: %w", err)
	}
	return item, nil
}

func (s *MarketTypeService) Update(ctx context.Context, id uint64, u MarketTypeUpdate) (*models.MarketType, error) {
	if err := fromValidator(validate.Struct(u)); err != nil {
		return nil, err
	}
	if d := u.Description.Value; d != nil && utf8.RuneCountInString(*d) > 500 {
		return nil, invalid("description", "failed max=500")
	}
	item, err := s.Repo.GetMarketType(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if name := trimmed(u.Name); name != nil {
		if *name == "" {
			return nil, invalid("name", "must not be empty")
		}
		if *name != item.Name {
			other, err := s.Repo.GetMarketTypeByName(ctx, *name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != id {
				return nil, invalid("name", "market type %q already exists", *name)
			}
		}
		item.Name = *name
	}
	u.Description.applyTo(&item.Description)
	set(&item.IsActive, u.IsActive)
	if err := s.Repo.SaveMarketType(ctx, item, u.SportIDs); err != nil {
		return nil, fmt.Errorf("update market type %d: %w", id, err)
	}
	return item, nil
}

// Delete removes an unused market type. One that tickets still reference is
// only deactivated; deleted reports which happened.
func (s *MarketTypeService) Delete(ctx context.Context, id uint64) (deleted bool, err error) {
	item, err := s.Repo.GetMarketType(ctx, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, ErrNotFound
	}
	used, err := s.Repo.CountTicketsByMarketType(ctx, id)
	if err != nil {
		return false, err
	}
	if used > 0 {
		item.IsActive = false
		if err := s.Repo.SaveMarketType(ctx, item, nil); err != nil {
			return false, err
		}
		if s.Logger != nil {
			s.Logger.Info("market type deactivated", zap.Uint64("id", id), zap.Int64("tickets", used))
		}
		return false, nil
	}
	if err := s.Repo.DeleteMarketType(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
