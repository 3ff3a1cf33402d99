package auth

import "oauth-login-service/internal/auth/claims"

// Identity represents a normalized external authentication identity
// returned by an OAuth provider. It contains facts only, no decisions.
type Identity struct {
	Provider  string         // provider name, e.g. "google"
	Login     string         // provider-mapped login, may be empty
	Email     string         // email returned by provider, never empty
	Name      string         // display name when the provider supplies one
	FirstName string         // mapped given name, may be empty
	LastName  string         // mapped family name, may be empty
	RawClaims map[string]any // full decoded payload, used for role lookup
}

// UniqueName returns the provider's unique_name claim. Azure AD carries
// the login there; other providers usually leave it unset.
func (i *Identity) UniqueName() string {
	if i.RawClaims == nil {
		return ""
	}
	return claims.String(i.RawClaims, "unique_name")
}
