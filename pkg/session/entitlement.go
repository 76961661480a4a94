package session

import (
	"strings"

	"promptifie/pkg/domain"
)

// EntitlementResolver maps an authenticated email to its subscription
// tier. Implementations back onto whatever entitlement source the
// deployment has; the session manager never inspects credentials itself.
type EntitlementResolver interface {
	Resolve(email string) domain.Tier
}

// PrefixResolver derives the tier from a case-sensitive email prefix.
// It mirrors the demo entitlement convention: biz* is Business, pro* is
// Pro, ult* is Ultimate, everything else is Free.
type PrefixResolver struct{}

// Resolve implements EntitlementResolver.
func (PrefixResolver) Resolve(email string) domain.Tier {
	switch {
	case strings.HasPrefix(email, "biz"):
		return domain.TierBusiness
	case strings.HasPrefix(email, "pro"):
		return domain.TierPro
	case strings.HasPrefix(email, "ult"):
		return domain.TierUltimate
	default:
		return domain.TierFree
	}
}

// StaticResolver always answers with a fixed tier. Useful for tests and
// for deployments that resolve tiers out of band.
type StaticResolver struct {
	Tier domain.Tier
}

// Resolve implements EntitlementResolver.
func (r StaticResolver) Resolve(string) domain.Tier {
	if r.Tier == "" {
		return domain.TierFree
	}
	return r.Tier
}
