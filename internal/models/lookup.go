package models

type Bookmaker struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Currency string `gorm:"type:varchar(10);not null;default:CZK" json:"currency"`
}

func (Bookmaker) TableName() string {
	return "bookmakers"
}

type Sport struct {
	ID   uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Icon *string `gorm:"type:varchar(10)" json:"icon"`
}

func (Sport) TableName() string {
	return "sports"
}

type League struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SportID uint64  `gorm:"not null;index" json:"sport_id"`
	Name    string  `gorm:"type:varchar(200);not null" json:"name"`
	Country *string `gorm:"type:varchar(100)" json:"country"`

	Sport *Sport `gorm:"foreignKey:SportID" json:"sport,omitempty"`
}

func (League) TableName() string {
	return "leagues"
}
