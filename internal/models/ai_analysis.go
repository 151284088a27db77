package models

import (
	"time"

	"gorm.io/datatypes"
)

// AiAnalysis keeps the filters and aggregates sent to the text model together
// with its answer.
type AiAnalysis struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Context      datatypes.JSON `gorm:"type:jsonb" json:"context"`
	Aggregates   datatypes.JSON `gorm:"type:jsonb" json:"aggregates,omitempty"`
	Question     *string        `gorm:"type:text" json:"question"`
	ModelName    string         `gorm:"type:varchar(100)" json:"model_name"`
	ResponseText string         `gorm:"type:text" json:"response_text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (AiAnalysis) TableName() string {
	return "ai_analyses"
}
