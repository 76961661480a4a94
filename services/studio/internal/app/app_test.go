package app

import (
	"context"
	"testing"

	"promptifie/pkg/domain"
	"promptifie/pkg/store"
)

type stubPrompts struct {
	prompt  string
	profile domain.StyleProfile
	palette []string
	err     error
}

func (s *stubPrompts) PromptFromImage(ctx context.Context, image string, model domain.PromptModel) (string, error) {
	return s.prompt, s.err
}
func (s *stubPrompts) EnhancePrompt(ctx context.Context, input string) (string, error) {
	return s.prompt, s.err
}
func (s *stubPrompts) AnalyzePromptQuality(ctx context.Context, prompt string) (string, error) {
	return s.prompt, s.err
}
func (s *stubPrompts) RandomIdea(ctx context.Context) (string, error) {
	return s.prompt, s.err
}
func (s *stubPrompts) RemixPrompt(ctx context.Context, imageA, imageB string) (string, error) {
	return s.prompt, s.err
}
func (s *stubPrompts) AnalyzeStyle(ctx context.Context, image string) (domain.StyleProfile, error) {
	return s.profile, s.err
}
func (s *stubPrompts) ExtractPalette(ctx context.Context, image string) ([]string, error) {
	return s.palette, s.err
}

type stubImages struct {
	image string
	err   error
}

func (s *stubImages) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return s.image, s.err
}
func (s *stubImages) LogoConcept(ctx context.Context, brandName, industry, colorStyle, iconStyle string) (string, error) {
	return s.image, s.err
}
func (s *stubImages) SeamlessPattern(ctx context.Context, description, style string) (string, error) {
	return s.image, s.err
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	memory := store.NewMemoryStore()
	a, err := New(Config{
		Accounts:    memory,
		Generations: memory,
		Sessions:    store.NewMemorySessionStore(),
		Bridge:      store.NewMemoryBridge(),
		Prompts:     &stubPrompts{prompt: "a lone astronaut on a red dune"},
		Images:      &stubImages{image: "data:image/png;base64,aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, memory
}

const testPassword = "Str0ng#Password!"

func TestSignUpStartsSessionWithNewUserCoins(t *testing.T) {
	a, _ := newTestApp(t)

	snap, token, err := a.SignUp("alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if !snap.IsLoggedIn || snap.Email != "alice@example.com" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Coins != 50 {
		t.Fatalf("expected 50 starting coins for new account, got %d", snap.Coins)
	}

	email, ok, err := a.ResolveToken(token)
	if err != nil || !ok || email != "alice@example.com" {
		t.Fatalf("resolve token: %q %v %v", email, ok, err)
	}
}

func TestSignUpRejectsDuplicateEmailAndWeakPassword(t *testing.T) {
	a, _ := newTestApp(t)

	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != ErrEmailAlreadyExists {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if _, _, err := a.SignUp("bob@example.com", "weak"); err == nil {
		t.Fatalf("expected weak password rejection")
	}
	if _, _, err := a.SignUp("", testPassword); err != ErrEmailAndPasswordRequired {
		t.Fatalf("expected required fields error, got %v", err)
	}
}

func TestLoginGrantsReturningUserCoins(t *testing.T) {
	a, _ := newTestApp(t)

	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	snap, _, err := a.Login("alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if snap.Coins != 100 {
		t.Fatalf("expected 100 coins on returning login, got %d", snap.Coins)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a, _ := newTestApp(t)

	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, _, err := a.Login("alice@example.com", "Wrong#Password1"); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := a.Login("nobody@example.com", testPassword); err != ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestLogoutRevokesTokenAndResetsSession(t *testing.T) {
	a, _ := newTestApp(t)

	_, token, err := a.SignUp("alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := a.Logout(token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := a.ResolveToken(token); ok {
		t.Fatalf("expected token to be revoked")
	}
	snap := a.Session("alice@example.com").Snapshot()
	if snap.IsLoggedIn || snap.Coins != 0 {
		t.Fatalf("expected reset session, got %+v", snap)
	}
}

func TestTierFromEmailPrefix(t *testing.T) {
	a, _ := newTestApp(t)

	snap, _, err := a.SignUp("pro-alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if snap.Tier != domain.TierPro {
		t.Fatalf("expected pro tier from email prefix, got %v", snap.Tier)
	}
	if snap.DailyUsesLeft != 999 {
		t.Fatalf("expected unlimited daily uses for paid tier, got %d", snap.DailyUsesLeft)
	}
}

func TestHistoryReturnsAuditEntries(t *testing.T) {
	a, _ := newTestApp(t)
	if _, _, err := a.SignUp("alice@example.com", testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := a.EnhancePrompt(context.Background(), "alice@example.com", "a cat"); err != nil {
		t.Fatalf("enhance prompt: %v", err)
	}
	entries, err := a.History("alice@example.com", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].Tool != domain.ToolMagicEnhance {
		t.Fatalf("unexpected history %+v", entries)
	}
	if entries[0].Outcome != domain.OutcomeSucceeded || entries[0].CoinCost != 10 {
		t.Fatalf("unexpected audit entry %+v", entries[0])
	}
}

func TestEmailNormalization(t *testing.T) {
	a, _ := newTestApp(t)
	if _, _, err := a.SignUp("  Alice@Example.COM ", testPassword); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, _, err := a.Login("alice@example.com", testPassword); err != nil {
		t.Fatalf("login with normalized email: %v", err)
	}
}
