package session

import (
	"testing"
	"time"
)

func TestToastsExpire(t *testing.T) {
	m := newTestManager(t, WithToastTTL(50*time.Millisecond))
	m.Login("demo@x.com", false)
	m.ShowToast("saved")

	if got := len(m.Toasts()); got != 2 { // welcome toast + manual one
		t.Fatalf("queued toasts = %d, want 2", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(m.Toasts()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("toasts never expired: %+v", m.Toasts())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestToastIDsAreTimestampDerived(t *testing.T) {
	m := newTestManager(t)
	before := time.Now().UnixNano()
	m.ShowToast("one")
	after := time.Now().UnixNano()

	toasts := m.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("toast count = %d, want 1", len(toasts))
	}
	if toasts[0].ID < before || toasts[0].ID > after {
		t.Fatalf("toast id %d outside [%d, %d]", toasts[0].ID, before, after)
	}
}
