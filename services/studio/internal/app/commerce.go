package app

import (
	"promptifie/pkg/domain"
	"promptifie/pkg/events"
)

// ShareCreation copies a creation into the community gallery and
// announces it on the event bus.
func (a *App) ShareCreation(email, creationID string) (domain.CommunityCreation, error) {
	item, err := a.Session(email).PublishToCommunity(creationID)
	if err != nil {
		return domain.CommunityCreation{}, err
	}
	a.publish(events.Event{
		Type:    events.TypeCreationShared,
		Email:   email,
		Payload: map[string]string{"creationId": creationID},
	})
	return item, nil
}

// ListPrompt puts a prompt up for sale and announces the listing.
func (a *App) ListPrompt(email, prompt string, price int) domain.MarketplaceItem {
	item := a.Session(email).SellPrompt(prompt, price)
	a.publish(events.Event{
		Type:    events.TypePromptListed,
		Email:   email,
		Payload: map[string]any{"itemId": item.ID, "price": price},
	})
	return item
}

// PurchasePrompt buys a listing. The purchase event fires only after
// the coin debit and the ownership append both landed.
func (a *App) PurchasePrompt(email, itemID string) error {
	if err := a.Session(email).BuyPrompt(itemID); err != nil {
		return err
	}
	a.publish(events.Event{
		Type:    events.TypePromptPurchased,
		Email:   email,
		Payload: map[string]string{"itemId": itemID},
	})
	return nil
}

// PurchaseCoins credits a coin pack bought on the pricing surface and
// returns the new balance.
func (a *App) PurchaseCoins(email string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidCoinAmount
	}
	mgr := a.Session(email)
	mgr.AddCoins(amount)
	return mgr.Coins(), nil
}
