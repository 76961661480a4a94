package store

import (
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisBridgeRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	bridge := NewRedisBridge(redis.Addr(), "")

	if _, ok, err := bridge.Get("promptifie:usage:demo@x.com"); err != nil || ok {
		t.Fatalf("get on missing key = (ok=%v, err=%v)", ok, err)
	}

	if err := bridge.Set("promptifie:usage:demo@x.com", `{"count":3,"date":"2026-03-14"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := bridge.Get("promptifie:usage:demo@x.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != `{"count":3,"date":"2026-03-14"}` {
		t.Fatalf("get = (%q, %v)", value, ok)
	}

	// Last writer wins.
	if err := bridge.Set("promptifie:usage:demo@x.com", `{"count":0,"date":"2026-03-15"}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = bridge.Get("promptifie:usage:demo@x.com")
	if value != `{"count":0,"date":"2026-03-15"}` {
		t.Fatalf("unexpected value after overwrite: %q", value)
	}
}

func TestRedisTokenRevoker(t *testing.T) {
	redis := miniredis.RunT(t)
	revoker := NewRedisTokenRevoker(redis.Addr(), "")

	if revoked, err := revoker.IsRevoked("tok-1"); err != nil || revoked {
		t.Fatalf("fresh token revoked = (%v, %v)", revoked, err)
	}
	if err := revoker.Revoke("tok-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := revoker.IsRevoked("tok-1"); !revoked {
		t.Fatal("token should be revoked")
	}

	redis.FastForward(time.Minute + time.Second)
	if revoked, _ := revoker.IsRevoked("tok-1"); revoked {
		t.Fatal("revocation should expire with the token")
	}
}

func TestRedisTokenRevokerNeverStoresRawToken(t *testing.T) {
	redis := miniredis.RunT(t)
	revoker := NewRedisTokenRevoker(redis.Addr(), "")

	const token = "eyJhbGciOiJIUzI1NiJ9.secret-session-token"
	if err := revoker.Revoke(token, time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	for _, key := range redis.Keys() {
		if strings.Contains(key, token) {
			t.Fatalf("raw token leaked into redis key %q", key)
		}
	}
	if revoked, _ := revoker.IsRevoked(token); !revoked {
		t.Fatal("hashed lookup should still find the revocation")
	}
}
