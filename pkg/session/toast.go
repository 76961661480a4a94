package session

import (
	"time"

	"promptifie/pkg/domain"
)

// ShowToast queues a transient notification that expires automatically.
func (m *Manager) ShowToast(message string) {
	m.mu.Lock()
	m.showToastLocked(message)
	m.mu.Unlock()
}

func (m *Manager) showToastLocked(message string) {
	id := m.now().UnixNano()
	m.toasts = append(m.toasts, domain.Toast{ID: id, Message: message})
	time.AfterFunc(m.toastTTL, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		kept := m.toasts[:0]
		for _, toast := range m.toasts {
			if toast.ID != id {
				kept = append(kept, toast)
			}
		}
		m.toasts = kept
	})
}

// Toasts returns a copy of the currently queued toasts.
func (m *Manager) Toasts() []domain.Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Toast(nil), m.toasts...)
}
