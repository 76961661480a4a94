package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"promptifie/pkg/domain"
)

// GormStore implements AccountStore and GenerationStore using GORM +
// Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &GenerationModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveAccount registers or updates an account.
func (s *GormStore) SaveAccount(a domain.Account) error {
	model := accountToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "updated_at"}),
	}).Create(&model).Error
}

// HasAccountEmail checks if email exists.
func (s *GormStore) HasAccountEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAccountByEmail looks up an account by email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// AccountCount returns the number of registered accounts.
func (s *GormStore) AccountCount() (int, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// RecordGeneration appends one audit-log entry.
func (s *GormStore) RecordGeneration(g domain.Generation) error {
	model := generationToModel(g)
	return s.db.Create(&model).Error
}

// ListGenerationsByEmail returns recent generations, newest first.
func (s *GormStore) ListGenerationsByEmail(email string, limit int) ([]domain.Generation, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []GenerationModel
	if err := s.db.Where("email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Generation, 0, len(models))
	for _, m := range models {
		out = append(out, generationFromModel(m))
	}
	return out, nil
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func generationToModel(g domain.Generation) GenerationModel {
	meta, _ := json.Marshal(g.Metadata)
	return GenerationModel{
		ID:           g.ID,
		Email:        g.Email,
		Tool:         string(g.Tool),
		Prompt:       g.Prompt,
		CoinCost:     g.CoinCost,
		Outcome:      string(g.Outcome),
		ErrorMessage: g.ErrorMessage,
		Metadata:     meta,
		CreatedAt:    g.CreatedAt,
	}
}

func generationFromModel(m GenerationModel) domain.Generation {
	var meta map[string]string
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.Generation{
		ID:           m.ID,
		Email:        m.Email,
		Tool:         domain.Tool(m.Tool),
		Prompt:       m.Prompt,
		CoinCost:     m.CoinCost,
		Outcome:      domain.GenerationOutcome(m.Outcome),
		ErrorMessage: m.ErrorMessage,
		Metadata:     meta,
		CreatedAt:    m.CreatedAt,
	}
}
