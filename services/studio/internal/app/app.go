package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"promptifie/internal/util"
	"promptifie/pkg/ai"
	"promptifie/pkg/auth"
	"promptifie/pkg/domain"
	"promptifie/pkg/events"
	"promptifie/pkg/queue"
	"promptifie/pkg/session"
	"promptifie/pkg/storage"
	"promptifie/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	SessionSecret string
	SessionTTL    time.Duration

	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AMQPURL      string
	AMQPExchange string

	QueueStream       string
	QueueGroup        string
	WorkerConcurrency int

	// Test seams. When set, the corresponding backend is not constructed.
	Accounts    store.AccountStore
	Generations store.GenerationStore
	Sessions    store.SessionStore
	Bridge      store.Bridge
	Prompts     ai.PromptGenerator
	Images      ai.ImageGenerator
	Artifacts   storage.ObjectStore
	Events      events.Publisher
	Jobs        *queue.RedisJobQueue

	SessionOptions []session.Option
}

// App wires storage, session state, AI generation, and messaging together.
type App struct {
	accounts    store.AccountStore
	generations store.GenerationStore
	sessions    store.SessionStore
	registry    *session.Registry
	prompts     ai.PromptGenerator
	images      ai.ImageGenerator
	artifacts   storage.ObjectStore
	events      events.Publisher
	jobs        *queue.RedisJobQueue
	concurrency int
}

// New constructs the application with its configured backends.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	accounts := cfg.Accounts
	generations := cfg.Generations
	if accounts == nil || generations == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		if accounts == nil {
			accounts = gormStore
		}
		if generations == nil {
			generations = gormStore
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		if strings.TrimSpace(cfg.SessionSecret) == "" {
			return nil, fmt.Errorf("sessionSecret is required")
		}
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for jwt+redis session strategy")
		}
		revoker := store.NewRedisTokenRevoker(cfg.RedisAddr, cfg.RedisPassword)
		jwtStore, err := store.NewJWTSessionStore(cfg.SessionSecret, cfg.SessionTTL, revoker, store.JWTOptions{})
		if err != nil {
			return nil, fmt.Errorf("init jwt session store: %w", err)
		}
		sessions = jwtStore
	}

	bridge := cfg.Bridge
	if bridge == nil {
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, fmt.Errorf("redisAddr is required for the persistence bridge")
		}
		bridge = store.NewRedisBridge(cfg.RedisAddr, cfg.RedisPassword)
	}

	prompts := cfg.Prompts
	images := cfg.Images
	if prompts == nil || images == nil {
		var opts []ai.GeminiOption
		if cfg.GeminiTextModel != "" {
			opts = append(opts, ai.WithTextModel(cfg.GeminiTextModel))
		}
		if cfg.GeminiImageModel != "" {
			opts = append(opts, ai.WithImageModel(cfg.GeminiImageModel))
		}
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		if prompts == nil {
			prompts = client
		}
		if images == nil {
			images = client
		}
	}

	artifacts := cfg.Artifacts
	if artifacts == nil && cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
		artifacts = minioStore
	}

	publisher := cfg.Events
	if publisher == nil {
		if cfg.AMQPURL != "" {
			amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				return nil, fmt.Errorf("init event publisher: %w", err)
			}
			publisher = amqpPublisher
		} else {
			publisher = events.NopPublisher{}
		}
	}

	jobs := cfg.Jobs
	if jobs == nil && cfg.QueueStream != "" {
		q, err := queue.NewRedisJobQueue(queue.RedisQueueConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Stream:   cfg.QueueStream,
			Group:    cfg.QueueGroup,
		})
		if err != nil {
			return nil, fmt.Errorf("init job queue: %w", err)
		}
		jobs = q
	}

	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	return &App{
		accounts:    accounts,
		generations: generations,
		sessions:    sessions,
		registry:    session.NewRegistry(bridge, cfg.SessionOptions...),
		prompts:     prompts,
		images:      images,
		artifacts:   artifacts,
		events:      publisher,
		jobs:        jobs,
		concurrency: concurrency,
	}, nil
}

// SignUp registers a new account and starts its session.
func (a *App) SignUp(email, password string) (session.Snapshot, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return session.Snapshot{}, "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return session.Snapshot{}, "", err
	}
	exists, err := a.accounts.HasAccountEmail(email)
	if err != nil {
		return session.Snapshot{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return session.Snapshot{}, "", ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return session.Snapshot{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	account := newAccount(email, hash, now)
	if err := a.accounts.SaveAccount(account); err != nil {
		return session.Snapshot{}, "", fmt.Errorf("save account: %w", err)
	}
	return a.startSession(email, true)
}

// Login authenticates an existing account and starts its session.
func (a *App) Login(email, password string) (session.Snapshot, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return session.Snapshot{}, "", ErrEmailAndPasswordRequired
	}
	account, ok, err := a.accounts.GetAccountByEmail(email)
	if err != nil {
		return session.Snapshot{}, "", fmt.Errorf("load account: %w", err)
	}
	if !ok || !auth.CheckPassword(password, account.PasswordHash) {
		return session.Snapshot{}, "", ErrInvalidCredentials
	}
	return a.startSession(email, false)
}

func (a *App) startSession(email string, isNewUser bool) (session.Snapshot, string, error) {
	token, err := a.sessions.NewSession(email)
	if err != nil {
		return session.Snapshot{}, "", fmt.Errorf("issue session token: %w", err)
	}
	mgr := a.registry.Get(email)
	mgr.Login(email, isNewUser)
	a.publish(events.Event{Type: events.TypeUserLoggedIn, Email: email})
	return mgr.Snapshot(), token, nil
}

// Logout revokes the token and resets the session state.
func (a *App) Logout(token string) error {
	email, ok, err := a.sessions.ResolveSession(token)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}
	if err := a.sessions.DeleteSession(token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if ok {
		a.registry.Get(email).Logout()
		a.publish(events.Event{Type: events.TypeUserLoggedOut, Email: email})
	}
	return nil
}

// ResolveToken maps a bearer token to the session email.
func (a *App) ResolveToken(token string) (string, bool, error) {
	return a.sessions.ResolveSession(token)
}

// Session returns the state manager for an authenticated email.
func (a *App) Session(email string) *session.Manager {
	return a.registry.Get(email)
}

// History returns the most recent generation audit entries for an email.
func (a *App) History(email string, limit int) ([]domain.Generation, error) {
	return a.generations.ListGenerationsByEmail(email, limit)
}

func newAccount(email, passwordHash string, now time.Time) domain.Account {
	return domain.Account{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (a *App) publish(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.events.Publish(ctx, event); err != nil {
		slog.Warn("publish event failed", "type", event.Type, "err", err)
	}
}
