package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"promptifie/internal/util"
)

const (
	defaultJWTIssuer   = "promptifie-studio"
	defaultJWTAudience = "promptifie-api"
)

var defaultJWTLeeway = 30 * time.Second

// JWTOptions configures JWT claim validation behavior.
type JWTOptions struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTSessionStore issues and validates HS256 session tokens carrying the
// account email. A TokenRevoker makes logout effective before expiry.
type JWTSessionStore struct {
	secret   []byte
	ttl      time.Duration
	revoker  TokenRevoker
	issuer   string
	audience string
	leeway   time.Duration
}

// NewJWTSessionStore builds an HS256 JWT session store.
func NewJWTSessionStore(secret string, ttl time.Duration, revoker TokenRevoker, opts JWTOptions) (*JWTSessionStore, error) {
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if revoker == nil {
		revoker = NewMemoryTokenRevoker()
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = defaultJWTIssuer
	}
	audience := opts.Audience
	if audience == "" {
		audience = defaultJWTAudience
	}
	leeway := opts.Leeway
	if leeway <= 0 {
		leeway = defaultJWTLeeway
	}
	return &JWTSessionStore{
		secret:   []byte(secret),
		ttl:      ttl,
		revoker:  revoker,
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
	}, nil
}

// NewSession issues a signed token for the email.
func (s *JWTSessionStore) NewSession(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        util.NewID(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ResolveSession validates a token and returns the embedded email.
func (s *JWTSessionStore) ResolveSession(token string) (string, bool, error) {
	revoked, err := s.revoker.IsRevoked(token)
	if err != nil {
		return "", false, err
	}
	if revoked {
		return "", false, nil
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithLeeway(s.leeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false, nil
	}
	return claims.Subject, true, nil
}

// DeleteSession revokes a token for the remainder of its lifetime.
func (s *JWTSessionStore) DeleteSession(token string) error {
	return s.revoker.Revoke(token, s.ttl)
}

// MemorySessionStore maps opaque tokens to emails in memory. Test double
// for JWTSessionStore.
type MemorySessionStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemorySessionStore constructs an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{tokens: make(map[string]string)}
}

// NewSession issues a random opaque token.
func (s *MemorySessionStore) NewSession(email string) (string, error) {
	token := util.NewID()
	s.mu.Lock()
	s.tokens[token] = email
	s.mu.Unlock()
	return token, nil
}

// ResolveSession returns the email bound to the token.
func (s *MemorySessionStore) ResolveSession(token string) (string, bool, error) {
	s.mu.Lock()
	email, ok := s.tokens[token]
	s.mu.Unlock()
	return email, ok, nil
}

// DeleteSession invalidates the token.
func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	return nil
}
