package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"promptifie/pkg/events"
	"promptifie/pkg/session"
	"promptifie/pkg/store"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newCommerceApp(t *testing.T) (*App, *capturingPublisher) {
	t.Helper()
	publisher := &capturingPublisher{}
	memory := store.NewMemoryStore()
	a, err := New(Config{
		Accounts:    memory,
		Generations: memory,
		Sessions:    store.NewMemorySessionStore(),
		Bridge:      store.NewMemoryBridge(),
		Prompts:     &stubPrompts{},
		Images:      &stubImages{},
		Events:      publisher,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, publisher
}

func hasType(types []string, want string) bool {
	for _, got := range types {
		if got == want {
			return true
		}
	}
	return false
}

func TestShareCreationPublishesEvent(t *testing.T) {
	a, publisher := newCommerceApp(t)
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}
	creation := a.Session("alice@example.com").AddCreation(session.NewCreation{Prompt: "neon skyline"})

	if _, err := a.ShareCreation("alice@example.com", creation.ID); err != nil {
		t.Fatalf("share creation: %v", err)
	}
	if !hasType(publisher.types(), events.TypeCreationShared) {
		t.Fatalf("expected %s event, got %v", events.TypeCreationShared, publisher.types())
	}
}

func TestShareCreationUnknownIDPublishesNothing(t *testing.T) {
	a, publisher := newCommerceApp(t)
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := a.ShareCreation("alice@example.com", "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if hasType(publisher.types(), events.TypeCreationShared) {
		t.Fatalf("no share event expected on failure, got %v", publisher.types())
	}
}

func TestMarketplaceListAndPurchasePublishEvents(t *testing.T) {
	a, publisher := newCommerceApp(t)
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}

	item := a.ListPrompt("alice@example.com", "cinematic portrait", 15)
	if !hasType(publisher.types(), events.TypePromptListed) {
		t.Fatalf("expected %s event, got %v", events.TypePromptListed, publisher.types())
	}

	if err := a.PurchasePrompt("alice@example.com", item.ID); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !hasType(publisher.types(), events.TypePromptPurchased) {
		t.Fatalf("expected %s event, got %v", events.TypePromptPurchased, publisher.types())
	}
}

func TestPurchasePromptFailurePublishesNothing(t *testing.T) {
	a, publisher := newCommerceApp(t)
	if _, _, err := a.SignUp("buyer@example.com", testPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := a.PurchasePrompt("buyer@example.com", "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if hasType(publisher.types(), events.TypePromptPurchased) {
		t.Fatalf("no purchase event expected on failure, got %v", publisher.types())
	}
}

func TestPurchaseCoinsCreditsBalance(t *testing.T) {
	a, _ := newCommerceApp(t)
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("signup: %v", err)
	}

	balance, err := a.PurchaseCoins("alice@example.com", 100)
	if err != nil {
		t.Fatalf("purchase coins: %v", err)
	}
	if balance != 150 {
		t.Fatalf("balance = %d, want 150", balance)
	}

	if _, err := a.PurchaseCoins("alice@example.com", 0); !errors.Is(err, ErrInvalidCoinAmount) {
		t.Fatalf("expected ErrInvalidCoinAmount, got %v", err)
	}
	if _, err := a.PurchaseCoins("alice@example.com", -5); !errors.Is(err, ErrInvalidCoinAmount) {
		t.Fatalf("expected ErrInvalidCoinAmount for negative amount, got %v", err)
	}
	if got := a.Session("alice@example.com").Coins(); got != 150 {
		t.Fatalf("rejected purchases must not change balance, got %d", got)
	}
}
