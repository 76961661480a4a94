package store

import "promptifie/pkg/domain"

// AccountStore persists registered accounts.
type AccountStore interface {
	SaveAccount(domain.Account) error
	HasAccountEmail(email string) (bool, error)
	GetAccountByEmail(email string) (domain.Account, bool, error)
	AccountCount() (int, error)
}

// GenerationStore persists the tool invocation audit log.
type GenerationStore interface {
	RecordGeneration(domain.Generation) error
	ListGenerationsByEmail(email string, limit int) ([]domain.Generation, error)
}

// SessionStore issues and resolves bearer session tokens.
type SessionStore interface {
	NewSession(email string) (string, error)
	ResolveSession(token string) (string, bool, error)
	DeleteSession(token string) error
}
