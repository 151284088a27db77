package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

// StatsService loads one filtered population per request and hands it to the
// analytics composer, so every block of a response shares that population.
type StatsService struct {
	Repo     repository.Repository
	Composer analytics.Composer
	Logger   *zap.Logger
	Now      func() time.Time
}

func (s *StatsService) population(ctx context.Context, filter analytics.Filter) ([]models.Ticket, error) {
	items, err := s.Repo.ListTicketsForStats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load tickets for stats: %w", err)
	}
	return items, nil
}

func (s *StatsService) Overview(ctx context.Context, filter analytics.Filter) (analytics.Overview, error) {
	items, err := s.population(ctx, filter)
	if err != nil {
		return analytics.Overview{}, err
	}
	bookmakers, err := s.Repo.ListBookmakers(ctx)
	if err != nil {
		return analytics.Overview{}, fmt.Errorf("list bookmakers: %w", err)
	}
	names := make([]string, 0, len(bookmakers))
	for _, b := range bookmakers {
		names = append(names, b.Name)
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	out := s.Composer.Compose(items, names, now)
	if s.Logger != nil {
		s.Logger.Debug("overview composed", zap.Int("tickets", len(items)), zap.Bool("filtered", !filter.IsEmpty()))
	}
	return out, nil
}

func (s *StatsService) Timeseries(ctx context.Context, filter analytics.Filter) ([]analytics.TimeseriesPoint, error) {
	items, err := s.population(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.Composer.Timeseries(items), nil
}
