package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TicketStatusOpen     = "open"
	TicketStatusWon      = "won"
	TicketStatusLost     = "lost"
	TicketStatusVoid     = "void"
	TicketStatusHalfWin  = "half_win"
	TicketStatusHalfLoss = "half_loss"
)

const (
	TicketTypeSolo   = "solo"
	TicketTypeAku    = "aku"
	TicketTypeSystem = "system"
)

const (
	TicketSourceManual = "manual"
	TicketSourceOCR    = "ocr"
)

// Ticket is one placed bet. Profit and payout are persisted at write time and
// are never recomputed by the analytics engine.
type Ticket struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	BookmakerID  uint64  `gorm:"not null;index" json:"bookmaker_id"`
	SportID      uint64  `gorm:"not null;index" json:"sport_id"`
	LeagueID     *uint64 `gorm:"index" json:"league_id"`
	MarketTypeID *uint64 `gorm:"index" json:"market_type_id"`

	HomeTeam  string     `gorm:"type:varchar(200);not null" json:"home_team"`
	AwayTeam  string     `gorm:"type:varchar(200);not null" json:"away_team"`
	EventDate *time.Time `gorm:"type:timestamptz" json:"event_date"`

	MarketLabel *string          `gorm:"type:varchar(200)" json:"market_label"`
	Selection   *string          `gorm:"type:varchar(200)" json:"selection"`
	Odds        decimal.Decimal  `gorm:"type:numeric(8,2);not null" json:"odds"`
	Stake       decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"stake"`
	Payout      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"payout"`
	Profit      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"profit"`

	Status       string  `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	TicketType   string  `gorm:"type:varchar(20);not null;default:solo" json:"ticket_type"`
	IsLive       bool    `gorm:"not null;default:false" json:"is_live"`
	Source       string  `gorm:"type:varchar(20);not null;default:manual" json:"source"`
	OCRImagePath *string `gorm:"column:ocr_image_path;type:varchar(500)" json:"ocr_image_path,omitempty"`

	CreatedAt *time.Time `gorm:"type:timestamptz;index" json:"created_at"`
	SettledAt *time.Time `gorm:"type:timestamptz" json:"settled_at"`

	Bookmaker  *Bookmaker  `gorm:"foreignKey:BookmakerID" json:"bookmaker,omitempty"`
	Sport      *Sport      `gorm:"foreignKey:SportID" json:"sport,omitempty"`
	League     *League     `gorm:"foreignKey:LeagueID" json:"league,omitempty"`
	MarketType *MarketType `gorm:"foreignKey:MarketTypeID" json:"market_type,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}
