package store

import (
	"testing"
	"time"
)

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Minute, nil, JWTOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	token, err := s.NewSession("demo@x.com")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	email, ok, err := s.ResolveSession(token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ok || email != "demo@x.com" {
		t.Fatalf("resolve = (%q, %v), want demo@x.com", email, ok)
	}
}

func TestJWTSessionStoreRejectsTampering(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Minute, nil, JWTOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	other, err := NewJWTSessionStore("other-secret", time.Minute, nil, JWTOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	token, err := other.NewSession("demo@x.com")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := s.ResolveSession(token); ok {
		t.Fatal("token signed with a different secret must not resolve")
	}
}

func TestJWTSessionStoreDeleteRevokes(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Minute, NewMemoryTokenRevoker(), JWTOptions{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	token, err := s.NewSession("demo@x.com")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := s.ResolveSession(token); ok {
		t.Fatal("revoked token must not resolve")
	}
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	token, err := s.NewSession("demo@x.com")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if email, ok, _ := s.ResolveSession(token); !ok || email != "demo@x.com" {
		t.Fatalf("resolve = (%q, %v)", email, ok)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.ResolveSession(token); ok {
		t.Fatal("deleted token must not resolve")
	}
}
