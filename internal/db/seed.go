package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bettracker/internal/models"
)

type seedLeague struct {
	Sport   string
	Name    string
	Country string
}

var (
	defaultBookmakers = []string{"Tipsport", "Fortuna", "Betano"}

	defaultSports = []struct {
		Name string
		Icon string
	}{
		{"Fotbal", "⚽"},
		{"Hokej", "🏒"},
		{"Tenis", "🎾"},
		{"Basketbal", "🏀"},
		{"Esport", "🎮"},
		{"Ostatní", "🏆"},
	}

	defaultLeagues = []seedLeague{
		{"Fotbal", "Premier League", "Anglie"},
		{"Fotbal", "La Liga", "Španělsko"},
		{"Fotbal", "Serie A", "Itálie"},
		{"Fotbal", "Bundesliga", "Německo"},
		{"Fotbal", "Ligue 1", "Francie"},
		{"Fotbal", "Fortuna Liga", "Česko"},
		{"Fotbal", "Champions League", "Evropa"},
		{"Fotbal", "Europa League", "Evropa"},
		{"Hokej", "NHL", "USA/Kanada"},
		{"Hokej", "Extraliga", "Česko"},
		{"Hokej", "KHL", "Rusko"},
		{"Tenis", "ATP", ""},
		{"Tenis", "WTA", ""},
		{"Basketbal", "NBA", "USA"},
		{"Basketbal", "Euroleague", "Evropa"},
		{"Esport", "CS2", ""},
		{"Esport", "League of Legends", ""},
	}
)

// Seed fills empty lookup tables. Tables that already hold rows are left
// untouched, so running it on every start is safe.
func Seed(ctx context.Context, db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}
	return db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedBookmakers(tx); err != nil {
			return fmt.Errorf("seed bookmakers: %w", err)
		}
		if err := seedSports(tx); err != nil {
			return fmt.Errorf("seed sports: %w", err)
		}
		if err := seedLeagues(tx); err != nil {
			return fmt.Errorf("seed leagues: %w", err)
		}
		return nil
	})
}

func isEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func seedBookmakers(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.Bookmaker{})
	if err != nil || !empty {
		return err
	}
	rows := make([]models.Bookmaker, 0, len(defaultBookmakers))
	for _, name := range defaultBookmakers {
		rows = append(rows, models.Bookmaker{Name: name, Currency: "CZK"})
	}
	return tx.Create(&rows).Error
}

func seedSports(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.Sport{})
	if err != nil || !empty {
		return err
	}
	rows := make([]models.Sport, 0, len(defaultSports))
	for _, s := range defaultSports {
		icon := s.Icon
		rows = append(rows, models.Sport{Name: s.Name, Icon: &icon})
	}
	return tx.Create(&rows).Error
}

func seedLeagues(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.League{})
	if err != nil || !empty {
		return err
	}
	var sports []models.Sport
	if err := tx.Find(&sports).Error; err != nil {
		return err
	}
	ids := make(map[string]uint64, len(sports))
	for _, s := range sports {
		ids[s.Name] = s.ID
	}
	rows := make([]models.League, 0, len(defaultLeagues))
	for _, l := range defaultLeagues {
		sportID, ok := ids[l.Sport]
		if !ok {
			continue
		}
		row := models.League{SportID: sportID, Name: l.Name}
		if l.Country != "" {
			country := l.Country
			row.Country = &country
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
