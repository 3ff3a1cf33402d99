// Package rolecheck evaluates the configured role-claim path against
// the raw identity payload before any account is touched.
package rolecheck

import (
	"slices"

	"oauth-login-service/internal/auth/claims"
)

// Decision is the outcome of the role gate. Checked is false when no
// role-claim path is configured; the flow then always authorizes.
type Decision struct {
	IsAdmin      bool
	IsAuthorized bool
	Checked      bool
}

// Evaluate walks rawClaims along the dotted rolePath and derives the
// decision from the resulting role set. A path that dead-ends is an
// empty set, which denies.
func Evaluate(rawClaims map[string]any, rolePath string) Decision {
	if rolePath == "" {
		return Decision{IsAuthorized: true}
	}

	var roles []string
	if v, ok := claims.Lookup(rawClaims, rolePath); ok {
		roles = claims.StringSet(v)
	}

	isAdmin := slices.Contains(roles, "admin")
	return Decision{
		IsAdmin:      isAdmin,
		IsAuthorized: len(roles) > 0 && (slices.Contains(roles, "user") || isAdmin),
		Checked:      true,
	}
}
