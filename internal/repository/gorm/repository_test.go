package gormrepository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestScopeTicketFilterEmpty(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Ticket{}).Scopes(scopeTicketFilter(analytics.Filter{})).Find(&[]models.Ticket{})
	})
	assert.NotContains(t, sql, "WHERE")
}

func TestScopeTicketFilterAllPredicates(t *testing.T) {
	db := dryRunDB(t)
	sport, league, book, market := uint64(1), uint64(2), uint64(3), uint64(4)
	live := false
	status := "won"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	oddsMin := decimal.RequireFromString("1.5")
	oddsMax := decimal.RequireFromString("3")

	f := analytics.Filter{
		SportID: &sport, LeagueID: &league, BookmakerID: &book, MarketTypeID: &market,
		IsLive: &live, Status: &status, DateFrom: &from, DateTo: &to,
		OddsMin: &oddsMin, OddsMax: &oddsMax,
	}
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.Ticket{}).Scopes(scopeTicketFilter(f)).Find(&[]models.Ticket{})
	})
	for _, frag := range []string{
		"tickets.sport_id = 1",
		"tickets.league_id = 2",
		"tickets.bookmaker_id = 3",
		"tickets.market_type_id = 4",
		"tickets.is_live = false",
		"tickets.status = 'won'",
		"tickets.created_at >=",
		"tickets.created_at <=",
		"tickets.odds >=",
		"tickets.odds <=",
	} {
		assert.Contains(t, sql, frag)
	}
}

func TestApplyOrder(t *testing.T) {
	db := dryRunDB(t)
	asc := true
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return applyOrder(tx.Model(&models.Ticket{}), ticketSortColumns["odds"], &asc, "tickets.created_at").Find(&[]models.Ticket{})
	})
	assert.Contains(t, sql, "ORDER BY tickets.odds asc")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return applyOrder(tx.Model(&models.Ticket{}), ticketSortColumns["drop table"], nil, "tickets.created_at").Find(&[]models.Ticket{})
	})
	assert.Contains(t, sql, "ORDER BY tickets.created_at desc")
}

func TestNormalizeLimitOffset(t *testing.T) {
	assert.Equal(t, 100, normalizeLimit(0, 100))
	assert.Equal(t, 500, normalizeLimit(10000, 100))
	assert.Equal(t, 42, normalizeLimit(42, 100))
	assert.Equal(t, 0, normalizeOffset(-5))
	assert.Equal(t, 7, normalizeOffset(7))
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	ctx := context.Background()
	items, err := s.ListTickets(ctx, repository.ListTicketsParams{})
	assert.NoError(t, err)
	assert.Nil(t, items)
	item, err := s.GetTicket(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, item)
	n, err := s.DeleteAiAnalysesBefore(ctx, time.Now())
	assert.NoError(t, err)
	assert.Zero(t, n)
}
