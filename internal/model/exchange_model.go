package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Exchange struct {
	Id         uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	SessionId  string                      `gorm:"type:varchar(100);not null;index:idx_exchanges_session_project,priority:1"`
	Project    string                      `gorm:"type:varchar(255);not null;index:idx_exchanges_session_project,priority:2"`
	Section    string                      `gorm:"type:varchar(30);not null;index"`
	Question   string                      `gorm:"type:text"`
	Prompt     string                      `gorm:"type:text;not null"`
	Answer     string                      `gorm:"type:text;not null"`
	References datatypes.JSONSlice[string] `gorm:"column:reference_list"`
	Notes      string                      `gorm:"type:text"`
	Provider   string                      `gorm:"type:varchar(100)"`
	Model      string                      `gorm:"type:varchar(100)"`
	CreatedAt  time.Time                   `gorm:"not null;index"`
}

func (Exchange) TableName() string {
	return "exchanges"
}
