package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
)

type TicketRepository interface {
	CreateTicket(ctx context.Context, item *models.Ticket) error
	SaveTicket(ctx context.Context, item *models.Ticket) error
	DeleteTicket(ctx context.Context, id uint64) (bool, error)
	GetTicket(ctx context.Context, id uint64) (*models.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]models.Ticket, error)
	CountTickets(ctx context.Context, filter analytics.Filter) (int64, error)
	// ListTicketsForStats returns the whole filtered population with every
	// lookup preloaded. Order is unspecified.
	ListTicketsForStats(ctx context.Context, filter analytics.Filter) ([]models.Ticket, error)
}

type LookupRepository interface {
	ListSports(ctx context.Context) ([]models.Sport, error)
	ListLeagues(ctx context.Context, sportID *uint64) ([]models.League, error)
	ListBookmakers(ctx context.Context) ([]models.Bookmaker, error)
	GetSport(ctx context.Context, id uint64) (*models.Sport, error)
	GetLeague(ctx context.Context, id uint64) (*models.League, error)
	GetBookmaker(ctx context.Context, id uint64) (*models.Bookmaker, error)
}

type MarketTypeRepository interface {
	ListMarketTypes(ctx context.Context, params ListMarketTypesParams) ([]models.MarketType, error)
	ListMarketTypesByIDs(ctx context.Context, ids []uint64) ([]models.MarketType, error)
	GetMarketType(ctx context.Context, id uint64) (*models.MarketType, error)
	GetMarketTypeByName(ctx context.Context, name string) (*models.MarketType, error)
	// SaveMarketType inserts or updates the row. A non-nil sportIDs replaces
	// the sport links; an empty non-nil slice links every sport.
	SaveMarketType(ctx context.Context, item *models.MarketType, sportIDs []uint64) error
	DeleteMarketType(ctx context.Context, id uint64) error
	CountTicketsByMarketType(ctx context.Context, id uint64) (int64, error)
	MarketTypeUsage(ctx context.Context) ([]MarketTypeUsage, error)
	TopMarketTypeIDs(ctx context.Context, sportID *uint64, limit int) ([]uint64, error)
}

type AnalysisRepository interface {
	InsertAiAnalysis(ctx context.Context, item *models.AiAnalysis) error
	ListAiAnalyses(ctx context.Context, params ListAiAnalysesParams) ([]models.AiAnalysis, error)
	DeleteAiAnalysesBefore(ctx context.Context, before time.Time) (int64, error)
}

type SettingsRepository interface {
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
}

type Repository interface {
	TicketRepository
	LookupRepository
	MarketTypeRepository
	AnalysisRepository
	SettingsRepository
}

type ListTicketsParams struct {
	Filter  analytics.Filter
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

type ListMarketTypesParams struct {
	ActiveOnly bool
	SportID    *uint64
	Limit      int
}

type ListAiAnalysesParams struct {
	Limit  int
	Offset int
}

type ListSystemSettingsParams struct {
	Limit   int
	Offset  int
	Prefix  *string
	OrderBy string
	Asc     *bool
}

// MarketTypeUsage counts tickets per market type by outcome.
type MarketTypeUsage struct {
	MarketTypeID uint64          `gorm:"column:market_type_id"`
	Bets         int64           `gorm:"column:bets"`
	Won          int64           `gorm:"column:won"`
	HalfWin      int64           `gorm:"column:half_win"`
	Profit       decimal.Decimal `gorm:"column:profit"`
}
