package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type GenerationModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"not null;index"`
	Tool         string `gorm:"not null;index"`
	Prompt       string `gorm:"type:text"`
	CoinCost     int    `gorm:"not null"`
	Outcome      string `gorm:"not null"`
	ErrorMessage string
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}
