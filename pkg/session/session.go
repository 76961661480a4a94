package session

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"promptifie/pkg/domain"
	"promptifie/pkg/store"
)

const (
	newUserCoins       = 50
	returningUserCoins = 100
	freeDailyUses      = 5
	unlimitedDailyUses = 999
	maxTeamSeats       = 4
	defaultToastTTL    = 3 * time.Second

	usageKeyPrefix      = "promptifie:usage:"
	onboardingKeyPrefix = "promptifie:onboarding:"
)

// PricingSurface is the redirect target signalled on failed spends.
const PricingSurface = "/pricing"

// Options holds optional Manager configuration.
type Options struct {
	Resolver EntitlementResolver
	Now      func() time.Time
	ToastTTL time.Duration
	Redirect func(target string)
}

// Option mutates Options.
type Option func(*Options)

// WithEntitlementResolver overrides the tier resolver.
func WithEntitlementResolver(r EntitlementResolver) Option {
	return func(o *Options) { o.Resolver = r }
}

// WithClock overrides the time source. Used by quota-reset tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithToastTTL overrides how long toasts stay queued.
func WithToastTTL(ttl time.Duration) Option {
	return func(o *Options) { o.ToastTTL = ttl }
}

// WithRedirectHandler receives navigation signals such as the pricing
// redirect emitted on insufficient balance.
func WithRedirectHandler(fn func(target string)) Option {
	return func(o *Options) { o.Redirect = fn }
}

// Manager is the single source of truth for one user's identity, coin
// balance, daily quota, and user-generated collections. Every mutation
// goes through its mutex, so operations are serialized and a spend can
// never interleave with another balance check.
type Manager struct {
	bridge   store.Bridge
	resolver EntitlementResolver
	now      func() time.Time
	toastTTL time.Duration
	redirect func(target string)

	mu                sync.Mutex
	loggedIn          bool
	email             string
	tier              domain.Tier
	coins             int
	dailyUsesLeft     int
	hasSeenOnboarding bool
	authModalOpen     bool
	creations         []domain.Creation
	community         []domain.CommunityCreation
	marketplace       []domain.MarketplaceItem
	teamMembers       []string
	customStyles      []domain.CustomStyle
	toasts            []domain.Toast
}

// NewManager builds a logged-out session backed by the given bridge.
func NewManager(bridge store.Bridge, opts ...Option) *Manager {
	options := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.Resolver == nil {
		options.Resolver = PrefixResolver{}
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.ToastTTL <= 0 {
		options.ToastTTL = defaultToastTTL
	}
	if options.Redirect == nil {
		options.Redirect = func(string) {}
	}
	m := &Manager{
		bridge:   bridge,
		resolver: options.Resolver,
		now:      options.Now,
		toastTTL: options.ToastTTL,
		redirect: options.Redirect,
	}
	m.resetLocked()
	return m
}

// resetLocked restores the logged-out defaults. Callers hold no lock at
// construction; everywhere else mu must be held.
func (m *Manager) resetLocked() {
	m.loggedIn = false
	m.email = ""
	m.tier = domain.TierFree
	m.coins = 0
	m.dailyUsesLeft = freeDailyUses
	m.hasSeenOnboarding = true
	m.authModalOpen = false
	m.creations = nil
	m.community = nil
	m.marketplace = nil
	m.teamMembers = nil
	m.customStyles = seededStyles()
}

func seededStyles() []domain.CustomStyle {
	return []domain.CustomStyle{
		{ID: "1", Name: "Cinematic 8K", Value: "highly detailed, cinematic lighting, 8k resolution, hyper-realistic"},
		{ID: "2", Name: "Vintage Analog", Value: "35mm film photography, grain, soft colors, vintage aesthetic"},
	}
}

// Login establishes the session. The tier comes from the entitlement
// resolver; no credential verification happens here. New users start
// with 50 coins and pending onboarding, returning users with 100 coins
// and a welcome toast.
func (m *Manager) Login(email string, isNewUser bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loggedIn = true
	m.email = email
	m.tier = m.resolver.Resolve(email)

	if isNewUser {
		m.coins = newUserCoins
		m.setHasSeenOnboardingLocked(false)
	} else {
		m.coins = returningUserCoins
		m.loadOnboardingLocked()
	}

	m.loadDailyQuotaLocked()
	m.authModalOpen = false
	if !isNewUser {
		m.showToastLocked("Welcome back, " + displayName(email) + "!")
	}
}

// Logout clears the session. Collections are owned by the session's
// lifetime and reset with it; only the bridge records survive.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.showToastLocked("Logged out successfully.")
}

// ConsumeCoins debits amount if the balance covers it. On shortfall
// nothing changes, a toast is queued, the pricing redirect fires, and
// ErrInsufficientCoins is returned.
func (m *Manager) ConsumeCoins(amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumeCoinsLocked(amount)
}

func (m *Manager) consumeCoinsLocked(amount int) error {
	if m.coins >= amount {
		m.coins -= amount
		return nil
	}
	m.showToastLocked("You don't have enough coins. Please upgrade your plan.")
	m.redirect(PricingSurface)
	return ErrInsufficientCoins
}

// AddCoins credits the balance unconditionally.
func (m *Manager) AddCoins(amount int) {
	m.mu.Lock()
	m.coins += amount
	m.mu.Unlock()
}

// ConsumeDailyUse spends one free-tier daily use and persists the
// incremented counter. Paid tiers and an exhausted quota are no-ops;
// coins and daily uses are independent gates and callers invoke both
// where both apply.
func (m *Manager) ConsumeDailyUse() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tier.Paid() || m.dailyUsesLeft == 0 {
		return
	}
	m.dailyUsesLeft--
	record := domain.DailyUsage{
		Count: freeDailyUses - m.dailyUsesLeft,
		Date:  m.today(),
	}
	m.persistUsageLocked(record)
}

// OpenAuthModal flags the auth modal as open.
func (m *Manager) OpenAuthModal() {
	m.mu.Lock()
	m.authModalOpen = true
	m.mu.Unlock()
}

// CloseAuthModal flags the auth modal as closed.
func (m *Manager) CloseAuthModal() {
	m.mu.Lock()
	m.authModalOpen = false
	m.mu.Unlock()
}

// SetHasSeenOnboarding records whether the onboarding tour was seen and
// persists the flag for the current email.
func (m *Manager) SetHasSeenOnboarding(seen bool) {
	m.mu.Lock()
	m.setHasSeenOnboardingLocked(seen)
	m.mu.Unlock()
}

func (m *Manager) setHasSeenOnboardingLocked(seen bool) {
	m.hasSeenOnboarding = seen
	if m.email == "" {
		return
	}
	value := "false"
	if seen {
		value = "true"
	}
	if err := m.bridge.Set(onboardingKeyPrefix+m.email, value); err != nil {
		slog.Warn("persist onboarding flag", "email", m.email, "err", err)
	}
}

func (m *Manager) loadOnboardingLocked() {
	value, ok, err := m.bridge.Get(onboardingKeyPrefix + m.email)
	if err != nil {
		slog.Warn("load onboarding flag", "email", m.email, "err", err)
		return
	}
	m.hasSeenOnboarding = ok && value == "true"
}

// loadDailyQuotaLocked initializes dailyUsesLeft from the persisted
// usage record. A stale or missing record resets the day to a fresh
// zero-count record. Paid tiers get the unlimited sentinel.
func (m *Manager) loadDailyQuotaLocked() {
	if m.tier.Paid() {
		m.dailyUsesLeft = unlimitedDailyUses
		return
	}
	today := m.today()
	raw, ok, err := m.bridge.Get(usageKeyPrefix + m.email)
	if err != nil {
		slog.Warn("load usage record", "email", m.email, "err", err)
		m.dailyUsesLeft = freeDailyUses
		return
	}
	if ok {
		var record domain.DailyUsage
		if err := json.Unmarshal([]byte(raw), &record); err == nil && record.Date == today {
			m.dailyUsesLeft = max(0, freeDailyUses-record.Count)
			return
		}
	}
	m.dailyUsesLeft = freeDailyUses
	m.persistUsageLocked(domain.DailyUsage{Count: 0, Date: today})
}

func (m *Manager) persistUsageLocked(record domain.DailyUsage) {
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := m.bridge.Set(usageKeyPrefix+m.email, string(raw)); err != nil {
		slog.Warn("persist usage record", "email", m.email, "err", err)
	}
}

func (m *Manager) today() string {
	return m.now().Format("2006-01-02")
}

// displayName derives the public display name from the email local part.
func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	IsLoggedIn        bool                       `json:"isLoggedIn"`
	Email             string                     `json:"email"`
	Tier              domain.Tier                `json:"tier"`
	Coins             int                        `json:"coins"`
	DailyUsesLeft     int                        `json:"dailyUsesLeft"`
	HasSeenOnboarding bool                       `json:"hasSeenOnboarding"`
	AuthModalOpen     bool                       `json:"authModalOpen"`
	Creations         []domain.Creation          `json:"creations"`
	CommunityItems    []domain.CommunityCreation `json:"communityItems"`
	MarketplaceItems  []domain.MarketplaceItem   `json:"marketplaceItems"`
	TeamMembers       []string                   `json:"teamMembers"`
	CustomStyles      []domain.CustomStyle       `json:"customStyles"`
	Toasts            []domain.Toast             `json:"toasts"`
}

// Snapshot returns a consistent copy of the full session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		IsLoggedIn:        m.loggedIn,
		Email:             m.email,
		Tier:              m.tier,
		Coins:             m.coins,
		DailyUsesLeft:     m.dailyUsesLeft,
		HasSeenOnboarding: m.hasSeenOnboarding,
		AuthModalOpen:     m.authModalOpen,
		Creations:         append([]domain.Creation(nil), m.creations...),
		CommunityItems:    append([]domain.CommunityCreation(nil), m.community...),
		MarketplaceItems:  copyMarketplace(m.marketplace),
		TeamMembers:       append([]string(nil), m.teamMembers...),
		CustomStyles:      append([]domain.CustomStyle(nil), m.customStyles...),
		Toasts:            append([]domain.Toast(nil), m.toasts...),
	}
}

func copyMarketplace(items []domain.MarketplaceItem) []domain.MarketplaceItem {
	out := make([]domain.MarketplaceItem, len(items))
	for i, item := range items {
		item.BoughtBy = append([]string(nil), item.BoughtBy...)
		out[i] = item
	}
	return out
}

// IsLoggedIn reports whether a user is logged in.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loggedIn
}

// Email returns the session email.
func (m *Manager) Email() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.email
}

// Tier returns the session tier.
func (m *Manager) Tier() domain.Tier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tier
}

// Coins returns the current balance.
func (m *Manager) Coins() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coins
}

// DailyUsesLeft returns the remaining free-tier uses for today.
func (m *Manager) DailyUsesLeft() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyUsesLeft
}

// HasSeenOnboarding reports whether the onboarding tour was seen.
func (m *Manager) HasSeenOnboarding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasSeenOnboarding
}
