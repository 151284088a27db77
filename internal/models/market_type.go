package models

// MarketType is a user-maintained bet type, optionally restricted to sports
// through the market_type_sports join table.
type MarketType struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:varchar(500)" json:"description"`
	IsActive    bool    `gorm:"not null;default:true;index" json:"is_active"`

	Sports []Sport `gorm:"many2many:market_type_sports;" json:"sports"`
}

func (MarketType) TableName() string {
	return "market_types"
}
