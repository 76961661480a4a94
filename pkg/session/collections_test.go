package session

import (
	"errors"
	"testing"
)

func TestAddCreationPrependsWithDefaults(t *testing.T) {
	m := newTestManager(t)
	m.Login("demo@x.com", false)

	first := m.AddCreation(NewCreation{Prompt: "a fox", Model: "Flux AI"})
	second := m.AddCreation(NewCreation{Prompt: "a wolf", Model: "Flux AI"})

	creations := m.Creations()
	if len(creations) != 2 {
		t.Fatalf("creation count = %d, want 2", len(creations))
	}
	if creations[0].ID != second.ID || creations[1].ID != first.ID {
		t.Fatal("creations are not most-recent-first")
	}
	if creations[0].IsFavorite {
		t.Fatal("new creation must start unfavorited")
	}
	if creations[0].Timestamp.Before(creations[1].Timestamp) {
		t.Fatal("newer creation carries older timestamp")
	}
	if first.ID == second.ID {
		t.Fatal("creation ids must be unique")
	}
}

func TestToggleFavorite(t *testing.T) {
	m := newTestManager(t)
	m.Login("demo@x.com", false)
	c := m.AddCreation(NewCreation{Prompt: "a fox", Model: "Flux AI"})

	if err := m.ToggleFavorite(c.ID); err != nil {
		t.Fatalf("toggle favorite: %v", err)
	}
	if !m.Creations()[0].IsFavorite {
		t.Fatal("favorite flag not set")
	}
	if err := m.ToggleFavorite("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestPublishToCommunity(t *testing.T) {
	m := newTestManager(t)
	m.Login("alice@x.com", false)
	c := m.AddCreation(NewCreation{Prompt: "a fox", Model: "Flux AI"})

	item, err := m.PublishToCommunity(c.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if item.UserName != "alice" || item.Likes != 0 || item.HasLiked {
		t.Fatalf("unexpected community item: %+v", item)
	}
	if !m.Creations()[0].IsPublished {
		t.Fatal("source creation not marked published")
	}

	// No dedup on the gallery; the source flag flip is idempotent.
	if _, err := m.PublishToCommunity(c.ID); err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if got := len(m.CommunityItems()); got != 2 {
		t.Fatalf("community count = %d, want 2", got)
	}

	if _, err := m.PublishToCommunity("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestLikeToggleIsSymmetric(t *testing.T) {
	m := newTestManager(t)
	m.Login("alice@x.com", false)
	c := m.AddCreation(NewCreation{Prompt: "a fox", Model: "Flux AI"})
	item, err := m.PublishToCommunity(c.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if err := m.LikeCommunityItem(item.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	got := m.CommunityItems()[0]
	if got.Likes != 1 || !got.HasLiked {
		t.Fatalf("after like: likes=%d hasLiked=%v", got.Likes, got.HasLiked)
	}

	if err := m.LikeCommunityItem(item.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	got = m.CommunityItems()[0]
	if got.Likes != 0 || got.HasLiked {
		t.Fatalf("after unlike: likes=%d hasLiked=%v", got.Likes, got.HasLiked)
	}
}

func TestBuyPromptIsAtomicWithPayment(t *testing.T) {
	m := newTestManager(t)
	m.Login("buyer@x.com", true) // 50 coins

	item := m.SellPrompt("neon city at dusk", 40)

	if err := m.BuyPrompt(item.ID); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	if got := m.Coins(); got != 10 {
		t.Fatalf("balance after buy = %d, want 10", got)
	}
	bought := m.MarketplaceItems()[0].BoughtBy
	if len(bought) != 1 || bought[0] != "buyer@x.com" {
		t.Fatalf("unexpected buyer list: %v", bought)
	}

	// Second buy with insufficient balance for a repeat must fail as
	// already-owned, not deduct again.
	if err := m.BuyPrompt(item.ID); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("second buy error = %v, want ErrAlreadyOwned", err)
	}
	if got := m.Coins(); got != 10 {
		t.Fatalf("balance after repeat buy = %d, want 10", got)
	}
	if got := len(m.MarketplaceItems()[0].BoughtBy); got != 1 {
		t.Fatalf("buyer appended twice: %d entries", got)
	}
}

func TestBuyPromptInsufficientBalanceLeavesItemUntouched(t *testing.T) {
	m := newTestManager(t)
	m.Login("buyer@x.com", true) // 50 coins
	item := m.SellPrompt("galaxy whale", 80)

	if err := m.BuyPrompt(item.ID); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("buy error = %v, want ErrInsufficientCoins", err)
	}
	if got := len(m.MarketplaceItems()[0].BoughtBy); got != 0 {
		t.Fatalf("buyer list mutated on failed payment: %d entries", got)
	}
	if got := m.Coins(); got != 50 {
		t.Fatalf("balance changed on failed payment: %d", got)
	}
}

func TestBuyPromptUnknownID(t *testing.T) {
	m := newTestManager(t)
	m.Login("buyer@x.com", false)
	if err := m.BuyPrompt("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown item error = %v, want ErrNotFound", err)
	}
}

func TestTeamSeatsCapAtFour(t *testing.T) {
	m := newTestManager(t)
	m.Login("biz@x.com", false)

	for _, member := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		if err := m.AddTeamMember(member); err != nil {
			t.Fatalf("add %s: %v", member, err)
		}
	}
	if err := m.AddTeamMember("e@x.com"); !errors.Is(err, ErrSeatsFull) {
		t.Fatalf("fifth seat error = %v, want ErrSeatsFull", err)
	}
	if got := len(m.TeamMembers()); got != 4 {
		t.Fatalf("roster size = %d, want 4", got)
	}

	m.RemoveTeamMember("absent@x.com") // no-op
	if got := len(m.TeamMembers()); got != 4 {
		t.Fatalf("roster changed by removing non-member: %d", got)
	}
	m.RemoveTeamMember("b@x.com")
	if got := len(m.TeamMembers()); got != 3 {
		t.Fatalf("roster size after remove = %d, want 3", got)
	}
}

func TestCustomStyles(t *testing.T) {
	m := newTestManager(t)
	m.Login("demo@x.com", false)

	if got := len(m.CustomStyles()); got != 2 {
		t.Fatalf("seeded preset count = %d, want 2", got)
	}
	style := m.AddCustomStyle("Moody Noir", "black and white, harsh shadows, film noir")
	if got := len(m.CustomStyles()); got != 3 {
		t.Fatalf("style count after add = %d, want 3", got)
	}
	if err := m.RemoveCustomStyle(style.ID); err != nil {
		t.Fatalf("remove style: %v", err)
	}
	if err := m.RemoveCustomStyle(style.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double remove error = %v, want ErrNotFound", err)
	}
}
