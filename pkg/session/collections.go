package session

import (
	"fmt"

	"promptifie/internal/util"
	"promptifie/pkg/domain"
)

// NewCreation carries the caller-supplied fields of a creation. The id,
// timestamp, and favorite flag are assigned by AddCreation.
type NewCreation struct {
	Prompt   string
	ImageKey string
	ImageURL string
	Model    string
}

// AddCreation records a generated artifact at the head of the creation
// list (most-recent-first) and returns it.
func (m *Manager) AddCreation(data NewCreation) domain.Creation {
	m.mu.Lock()
	defer m.mu.Unlock()
	creation := domain.Creation{
		ID:         util.NewID(),
		Prompt:     data.Prompt,
		ImageKey:   data.ImageKey,
		ImageURL:   data.ImageURL,
		Model:      data.Model,
		Timestamp:  m.now(),
		IsFavorite: false,
	}
	m.creations = append([]domain.Creation{creation}, m.creations...)
	return creation
}

// ToggleFavorite flips the favorite flag on a creation.
func (m *Manager) ToggleFavorite(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.creations {
		if m.creations[i].ID == id {
			m.creations[i].IsFavorite = !m.creations[i].IsFavorite
			return nil
		}
	}
	return ErrNotFound
}

// PublishToCommunity copies a creation into the community gallery with
// the current user's display name and zero likes, and marks the source
// published. Publishing twice duplicates the gallery entry; the source
// flag flip is idempotent.
func (m *Manager) PublishToCommunity(id string) (domain.CommunityCreation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.creations {
		if m.creations[i].ID != id {
			continue
		}
		m.creations[i].IsPublished = true
		item := domain.CommunityCreation{
			Creation: m.creations[i],
			UserName: displayName(m.email),
			Likes:    0,
		}
		m.community = append([]domain.CommunityCreation{item}, m.community...)
		m.showToastLocked("Creation shared to community gallery!")
		return item, nil
	}
	return domain.CommunityCreation{}, ErrNotFound
}

// LikeCommunityItem toggles the viewer's like on a gallery item and
// adjusts the like count symmetrically, so two calls restore both the
// count and the flag.
func (m *Manager) LikeCommunityItem(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.community {
		if m.community[i].ID != id {
			continue
		}
		if m.community[i].HasLiked {
			m.community[i].Likes--
		} else {
			m.community[i].Likes++
		}
		m.community[i].HasLiked = !m.community[i].HasLiked
		return nil
	}
	return ErrNotFound
}

// SellPrompt lists a prompt on the marketplace at a fixed price.
func (m *Manager) SellPrompt(prompt string, price int) domain.MarketplaceItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := domain.MarketplaceItem{
		ID:         util.NewID(),
		SellerName: displayName(m.email),
		Prompt:     prompt,
		Price:      price,
		BoughtBy:   []string{},
	}
	m.marketplace = append([]domain.MarketplaceItem{item}, m.marketplace...)
	m.showToastLocked(fmt.Sprintf("Prompt listed for %d coins!", price))
	return item
}

// BuyPrompt purchases a listed prompt. The buyer list is only appended
// after a successful coin debit, so payment and ownership move together.
func (m *Manager) BuyPrompt(itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.marketplace {
		item := &m.marketplace[i]
		if item.ID != itemID {
			continue
		}
		for _, buyer := range item.BoughtBy {
			if buyer == m.email {
				m.showToastLocked("Already owned.")
				return ErrAlreadyOwned
			}
		}
		if err := m.consumeCoinsLocked(item.Price); err != nil {
			return err
		}
		item.BoughtBy = append(item.BoughtBy, m.email)
		m.showToastLocked("Prompt purchased!")
		return nil
	}
	return ErrNotFound
}

// AddTeamMember appends a seat unless the roster is full.
func (m *Manager) AddTeamMember(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.teamMembers) >= maxTeamSeats {
		m.showToastLocked("Seats full.")
		return ErrSeatsFull
	}
	m.teamMembers = append(m.teamMembers, email)
	m.showToastLocked("Invited " + email)
	return nil
}

// RemoveTeamMember drops a seat. Removing a non-member is a no-op.
func (m *Manager) RemoveTeamMember(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.teamMembers[:0]
	for _, member := range m.teamMembers {
		if member != email {
			kept = append(kept, member)
		}
	}
	m.teamMembers = kept
	m.showToastLocked("Removed " + email)
}

// AddCustomStyle saves a reusable prompt-suffix preset.
func (m *Manager) AddCustomStyle(name, value string) domain.CustomStyle {
	m.mu.Lock()
	defer m.mu.Unlock()
	style := domain.CustomStyle{ID: util.NewID(), Name: name, Value: value}
	m.customStyles = append(m.customStyles, style)
	m.showToastLocked(fmt.Sprintf("Style %q saved!", name))
	return style
}

// RemoveCustomStyle deletes a preset by id.
func (m *Manager) RemoveCustomStyle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customStyles {
		if m.customStyles[i].ID == id {
			m.customStyles = append(m.customStyles[:i], m.customStyles[i+1:]...)
			m.showToastLocked("Style removed.")
			return nil
		}
	}
	return ErrNotFound
}

// Creations returns a copy of the creation list, most recent first.
func (m *Manager) Creations() []domain.Creation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Creation(nil), m.creations...)
}

// CommunityItems returns a copy of the community gallery.
func (m *Manager) CommunityItems() []domain.CommunityCreation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CommunityCreation(nil), m.community...)
}

// MarketplaceItems returns a copy of the marketplace listings.
func (m *Manager) MarketplaceItems() []domain.MarketplaceItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMarketplace(m.marketplace)
}

// TeamMembers returns a copy of the roster.
func (m *Manager) TeamMembers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.teamMembers...)
}

// CustomStyles returns a copy of the saved presets.
func (m *Manager) CustomStyles() []domain.CustomStyle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CustomStyle(nil), m.customStyles...)
}
