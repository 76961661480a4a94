package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"promptifie/pkg/domain"
	"promptifie/pkg/store"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	return NewManager(store.NewMemoryBridge(), opts...)
}

func TestLoginDerivesTierFromEmailPrefix(t *testing.T) {
	cases := []struct {
		email string
		want  domain.Tier
	}{
		{"biz@x.com", domain.TierBusiness},
		{"pro@x.com", domain.TierPro},
		{"ult@x.com", domain.TierUltimate},
		{"demo@x.com", domain.TierFree},
		{"Pro@x.com", domain.TierFree}, // prefix match is case-sensitive
	}
	for _, tc := range cases {
		m := newTestManager(t)
		m.Login(tc.email, false)
		if got := m.Tier(); got != tc.want {
			t.Fatalf("login(%q): tier %q, want %q", tc.email, got, tc.want)
		}
	}
}

func TestLoginGrantsStartingCoins(t *testing.T) {
	m := newTestManager(t)
	m.Login("new@x.com", true)
	if got := m.Coins(); got != 50 {
		t.Fatalf("new user coins = %d, want 50", got)
	}
	if m.HasSeenOnboarding() {
		t.Fatal("new user should not have seen onboarding")
	}

	m = newTestManager(t)
	m.Login("old@x.com", false)
	if got := m.Coins(); got != 100 {
		t.Fatalf("returning user coins = %d, want 100", got)
	}
}

func TestLoginWelcomesReturningUsersOnly(t *testing.T) {
	m := newTestManager(t)
	m.Login("alice@x.com", false)
	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "Welcome back, alice!" {
		t.Fatalf("unexpected toasts after returning login: %+v", toasts)
	}

	m = newTestManager(t)
	m.Login("bob@x.com", true)
	if got := m.Toasts(); len(got) != 0 {
		t.Fatalf("new user login should not toast, got %+v", got)
	}
}

func TestLogoutResetsSession(t *testing.T) {
	m := newTestManager(t)
	m.Login("pro@x.com", false)
	m.AddCreation(NewCreation{Prompt: "a castle", Model: "Flux AI"})
	m.Logout()

	if m.IsLoggedIn() {
		t.Fatal("still logged in after logout")
	}
	if got := m.Coins(); got != 0 {
		t.Fatalf("coins after logout = %d, want 0", got)
	}
	if got := m.Tier(); got != domain.TierFree {
		t.Fatalf("tier after logout = %q, want Free", got)
	}
	if got := m.Creations(); len(got) != 0 {
		t.Fatalf("creations survived logout: %+v", got)
	}
	if got := m.CustomStyles(); len(got) != 2 {
		t.Fatalf("expected reseeded style presets, got %d", len(got))
	}
}

func TestConsumeCoinsNeverGoesNegative(t *testing.T) {
	m := newTestManager(t)
	m.Login("demo@x.com", true) // 50 coins

	if err := m.ConsumeCoins(30); err != nil {
		t.Fatalf("first spend: %v", err)
	}
	if err := m.ConsumeCoins(30); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("overspend error = %v, want ErrInsufficientCoins", err)
	}
	if got := m.Coins(); got != 20 {
		t.Fatalf("balance after failed spend = %d, want 20", got)
	}
}

func TestConsumeCoinsFailureSignalsPricingRedirect(t *testing.T) {
	var target string
	m := newTestManager(t, WithRedirectHandler(func(to string) { target = to }))
	m.Login("demo@x.com", true)

	if err := m.ConsumeCoins(1000); err == nil {
		t.Fatal("expected overspend to fail")
	}
	if target != PricingSurface {
		t.Fatalf("redirect target = %q, want %q", target, PricingSurface)
	}
}

func TestConcurrentSpendsCannotOverdraw(t *testing.T) {
	m := newTestManager(t)
	m.Login("demo@x.com", true) // 50 coins

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = m.ConsumeCoins(10)
		}()
	}
	wg.Wait()

	if got := m.Coins(); got != 0 {
		t.Fatalf("balance after concurrent spends = %d, want 0", got)
	}
}

func TestDailyQuotaLifecycle(t *testing.T) {
	bridge := store.NewMemoryBridge()
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	now := day
	clock := func() time.Time { return now }

	m := NewManager(bridge, WithClock(clock))
	m.Login("demo@x.com", false)
	if got := m.DailyUsesLeft(); got != 5 {
		t.Fatalf("initial daily uses = %d, want 5", got)
	}

	for i := 0; i < 5; i++ {
		m.ConsumeDailyUse()
	}
	if got := m.DailyUsesLeft(); got != 0 {
		t.Fatalf("daily uses after five spends = %d, want 0", got)
	}
	m.ConsumeDailyUse() // sixth call is a no-op
	if got := m.DailyUsesLeft(); got != 0 {
		t.Fatalf("daily uses after sixth spend = %d, want 0", got)
	}

	// The counter is per calendar day and survives a new session.
	m2 := NewManager(bridge, WithClock(clock))
	m2.Login("demo@x.com", false)
	if got := m2.DailyUsesLeft(); got != 0 {
		t.Fatalf("same-day relogin daily uses = %d, want 0", got)
	}

	// A new day resets the quota.
	now = day.Add(24 * time.Hour)
	m3 := NewManager(bridge, WithClock(clock))
	m3.Login("demo@x.com", false)
	if got := m3.DailyUsesLeft(); got != 5 {
		t.Fatalf("next-day daily uses = %d, want 5", got)
	}
}

func TestPaidTiersSkipDailyQuota(t *testing.T) {
	m := newTestManager(t)
	m.Login("pro@x.com", false)
	if got := m.DailyUsesLeft(); got != 999 {
		t.Fatalf("paid tier daily uses = %d, want 999", got)
	}
	m.ConsumeDailyUse()
	if got := m.DailyUsesLeft(); got != 999 {
		t.Fatalf("paid tier daily uses after spend = %d, want 999", got)
	}
}

func TestOnboardingFlagPersistsPerEmail(t *testing.T) {
	bridge := store.NewMemoryBridge()

	m := NewManager(bridge)
	m.Login("demo@x.com", true)
	if m.HasSeenOnboarding() {
		t.Fatal("new user starts with onboarding pending")
	}
	m.SetHasSeenOnboarding(true)

	m2 := NewManager(bridge)
	m2.Login("demo@x.com", false)
	if !m2.HasSeenOnboarding() {
		t.Fatal("onboarding flag should survive relogin")
	}
}

func TestStaticResolverOverridesPrefixHeuristic(t *testing.T) {
	m := newTestManager(t, WithEntitlementResolver(StaticResolver{Tier: domain.TierBusiness}))
	m.Login("demo@x.com", false)
	if got := m.Tier(); got != domain.TierBusiness {
		t.Fatalf("tier = %q, want Business", got)
	}
}
