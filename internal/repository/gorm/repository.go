package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- tickets ----------------------------------------------------------------

var ticketSortColumns = map[string]string{
	"id":         "tickets.id",
	"created_at": "tickets.created_at",
	"event_date": "tickets.event_date",
	"odds":       "tickets.odds",
	"stake":      "tickets.stake",
	"payout":     "tickets.payout",
	"profit":     "tickets.profit",
	"status":     "tickets.status",
	"settled_at": "tickets.settled_at",
}

// scopeTicketFilter is the SQL twin of analytics.Filter.Match.
func scopeTicketFilter(f analytics.Filter) func(*gorm.DB) *gorm.DB {
	return func(query *gorm.DB) *gorm.DB {
		if f.SportID != nil {
			query = query.Where("tickets.sport_id = ?", *f.SportID)
		}
		if f.LeagueID != nil {
			query = query.Where("tickets.league_id = ?", *f.LeagueID)
		}
		if f.BookmakerID != nil {
			query = query.Where("tickets.bookmaker_id = ?", *f.BookmakerID)
		}
		if f.MarketTypeID != nil {
			query = query.Where("tickets.market_type_id = ?", *f.MarketTypeID)
		}
		if f.IsLive != nil {
			query = query.Where("tickets.is_live = ?", *f.IsLive)
		}
		if f.Status != nil && strings.TrimSpace(*f.Status) != "" {
			query = query.Where("tickets.status = ?", strings.TrimSpace(*f.Status))
		}
		if f.DateFrom != nil {
			query = query.Where("tickets.created_at >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			query = query.Where("tickets.created_at <= ?", *f.DateTo)
		}
		if f.OddsMin != nil {
			query = query.Where("tickets.odds >= ?", *f.OddsMin)
		}
		if f.OddsMax != nil {
			query = query.Where("tickets.odds <= ?", *f.OddsMax)
		}
		return query
	}
}

func preloadTicketLookups(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Bookmaker").
		Preload("Sport").
		Preload("League").
		Preload("MarketType")
}

func (s *Store) CreateTicket(ctx context.Context, item *models.Ticket) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(item).Error
}

func (s *Store) SaveTicket(ctx context.Context, item *models.Ticket) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(item).Error
}

func (s *Store) DeleteTicket(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Delete(&models.Ticket{}, id)
	return res.RowsAffected > 0, res.Error
}

func (s *Store) GetTicket(ctx context.Context, id uint64) (*models.Ticket, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Ticket
	err := preloadTicketLookups(s.db.WithContext(ctx)).
		Where("tickets.id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTickets(ctx context.Context, params repository.ListTicketsParams) ([]models.Ticket, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := preloadTicketLookups(s.db.WithContext(ctx).Model(&models.Ticket{})).
		Scopes(scopeTicketFilter(params.Filter))
	query = applyOrder(query, ticketSortColumns[strings.TrimSpace(params.OrderBy)], params.Asc, "tickets.created_at")
	if params.OrderBy != "id" {
		query = query.Order("tickets.id desc")
	}
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Ticket
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTickets(ctx context.Context, filter analytics.Filter) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Scopes(scopeTicketFilter(filter)).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListTicketsForStats(ctx context.Context, filter analytics.Filter) ([]models.Ticket, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Ticket
	if err := preloadTicketLookups(s.db.WithContext(ctx).Model(&models.Ticket{})).
		Scopes(scopeTicketFilter(filter)).
		Order("tickets.created_at asc nulls first").
		Order("tickets.id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- lookups ----------------------------------------------------------------

func (s *Store) ListSports(ctx context.Context) ([]models.Sport, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Sport
	if err := s.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListLeagues(ctx context.Context, sportID *uint64) ([]models.League, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.League{})
	if sportID != nil {
		query = query.Where("sport_id = ?", *sportID)
	}
	var items []models.League
	if err := query.Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListBookmakers(ctx context.Context) ([]models.Bookmaker, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Bookmaker
	if err := s.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetSport(ctx context.Context, id uint64) (*models.Sport, error) {
	return firstByID[models.Sport](ctx, s, id)
}

func (s *Store) GetLeague(ctx context.Context, id uint64) (*models.League, error) {
	return firstByID[models.League](ctx, s, id)
}

func (s *Store) GetBookmaker(ctx context.Context, id uint64) (*models.Bookmaker, error) {
	return firstByID[models.Bookmaker](ctx, s, id)
}

func firstByID[T any](ctx context.Context, s *Store, id uint64) (*T, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item T
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- market types -----------------------------------------------------------

func (s *Store) ListMarketTypes(ctx context.Context, params repository.ListMarketTypesParams) ([]models.MarketType, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.MarketType{}).Preload("Sports")
	if params.ActiveOnly {
		query = query.Where("market_types.is_active = ?", true)
	}
	if params.SportID != nil {
		query = query.
			Joins("JOIN market_type_sports ON market_type_sports.market_type_id = market_types.id").
			Where("market_type_sports.sport_id = ?", *params.SportID)
	}
	query = query.Order("market_types.name asc")
	if params.Limit > 0 {
		query = query.Limit(normalizeLimit(params.Limit, 100))
	}
	var items []models.MarketType
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMarketTypesByIDs(ctx context.Context, ids []uint64) ([]models.MarketType, error) {
	if s == nil || s.db == nil || len(ids) == 0 {
		return nil, nil
	}
	var items []models.MarketType
	if err := s.db.WithContext(ctx).
		Preload("Sports").
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetMarketType(ctx context.Context, id uint64) (*models.MarketType, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.MarketType
	err := s.db.WithContext(ctx).Preload("Sports").Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetMarketTypeByName(ctx context.Context, name string) (*models.MarketType, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.MarketType
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SaveMarketType(ctx context.Context, item *models.MarketType, sportIDs []uint64) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sports").Save(item).Error; err != nil {
			return err
		}
		if sportIDs == nil {
			return nil
		}
		var sports []models.Sport
		query := tx.Model(&models.Sport{})
		if len(sportIDs) > 0 {
			query = query.Where("id IN ?", sportIDs)
		}
		if err := query.Order("id asc").Find(&sports).Error; err != nil {
			return err
		}
		if err := tx.Model(item).Association("Sports").Replace(sports); err != nil {
			return err
		}
		item.Sports = sports
		return nil
	})
}

func (s *Store) DeleteMarketType(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := models.MarketType{ID: id}
		if err := tx.Model(&item).Association("Sports").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.MarketType{}, id).Error
	})
}

func (s *Store) CountTicketsByMarketType(ctx context.Context, id uint64) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("market_type_id = ?", id).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarketTypeUsage(ctx context.Context) ([]repository.MarketTypeUsage, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.MarketTypeUsage
	err := s.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Select(
			"market_type_id, " +
				"COUNT(*) AS bets, " +
				"SUM(CASE WHEN status = 'won' THEN 1 ELSE 0 END) AS won, " +
				"SUM(CASE WHEN status = 'half_win' THEN 1 ELSE 0 END) AS half_win, " +
				"COALESCE(SUM(profit), 0) AS profit",
		).
		Where("market_type_id IS NOT NULL").
		Group("market_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) TopMarketTypeIDs(ctx context.Context, sportID *uint64, limit int) ([]uint64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Select("market_type_id, COUNT(id) AS uses").
		Where("market_type_id IS NOT NULL")
	if sportID != nil {
		query = query.Where("sport_id = ?", *sportID)
	}
	var rows []struct {
		MarketTypeID uint64
		Uses         int64
	}
	if err := query.
		Group("market_type_id").
		Order("uses desc").
		Order("market_type_id asc").
		Limit(normalizeLimit(limit, 5)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MarketTypeID)
	}
	return ids, nil
}

// --- ai analyses ------------------------------------------------------------

func (s *Store) InsertAiAnalysis(ctx context.Context, item *models.AiAnalysis) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAiAnalyses(ctx context.Context, params repository.ListAiAnalysesParams) ([]models.AiAnalysis, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AiAnalysis
	if err := s.db.WithContext(ctx).
		Model(&models.AiAnalysis{}).
		Order("created_at desc").
		Order("id desc").
		Limit(normalizeLimit(params.Limit, 20)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAiAnalysesBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.AiAnalysis{})
	return res.RowsAffected, res.Error
}

// --- system settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		pattern := strings.TrimSpace(*params.Prefix) + "%"
		query = query.Where("key LIKE ?", pattern)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	limit := normalizeLimit(params.Limit, 500)
	offset := normalizeOffset(params.Offset)
	var items []models.SystemSetting
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
