// Package provider describes the supported identity providers as data:
// endpoint templates, default scope, user-info retrieval strategy and
// claim field mappings. Exactly one provider is active at a time,
// selected by configuration.
package provider

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidProviderConfig = errors.New("provider: invalid or missing provider configuration")

// Name identifies a supported provider.
type Name string

const (
	AzureAD  Name = "azuread"
	GitLab   Name = "gitlab"
	Google   Name = "google"
	Keycloak Name = "keycloak"
	Okta     Name = "okta"
	Custom   Name = "custom"
)

// Strategy selects how the user-info payload is obtained after the
// token exchange.
type Strategy int

const (
	// DecodeToken decodes the access token's payload segment as JSON
	// without signature verification.
	DecodeToken Strategy = iota
	// FetchEndpoint performs an authenticated GET against the
	// provider's user-info endpoint.
	FetchEndpoint
)

// FieldMap names the payload keys an identity field is read from.
type FieldMap struct {
	Login     string
	Email     string
	FirstName string
	LastName  string
}

// Settings carries the operator-supplied provider selection. The
// client secret stays in the settings store and is not part of this
// value.
type Settings struct {
	Provider string
	Site     string
	TenantID string

	CustomAuthEndpoint    string
	CustomTokenEndpoint   string
	CustomProfileEndpoint string
	CustomLogoutEndpoint  string
	CustomScope           string
	CustomUIDField        string
	CustomEmailField      string
	CustomFirstNameField  string
	CustomLastNameField   string
}

// Config is a fully resolved provider description: endpoint templates
// expanded against the tenant and site, ready for the OAuth client.
type Config struct {
	Name             Name
	AuthorizeURL     string
	TokenURL         string
	DefaultScope     string
	Strategy         Strategy
	UserInfoEndpoint string
	FieldMap         FieldMap
}

// template holds the static per-provider description. "{tenant}" in a
// path is replaced by the configured tenant id at resolve time.
type template struct {
	authorizePath string
	tokenPath     string
	scope         string
	strategy      Strategy
	userInfoPath  string
	fieldMap      FieldMap
}

var builtins = map[Name]template{
	AzureAD: {
		authorizePath: "/{tenant}/oauth2/authorize",
		tokenPath:     "/{tenant}/oauth2/token",
		scope:         "user:email",
		strategy:      DecodeToken,
		fieldMap:      FieldMap{Login: "unique_name", Email: "unique_name", FirstName: "given_name", LastName: "family_name"},
	},
	GitLab: {
		authorizePath: "/oauth/authorize",
		tokenPath:     "/oauth/token",
		scope:         "read_user",
		strategy:      FetchEndpoint,
		userInfoPath:  "/api/v4/user",
		fieldMap:      FieldMap{Login: "username", Email: "email", FirstName: "given_name", LastName: "family_name"},
	},
	Google: {
		authorizePath: "/o/oauth2/v2/auth",
		tokenPath:     "https://oauth2.googleapis.com/token",
		scope:         "profile email",
		strategy:      FetchEndpoint,
		userInfoPath:  "https://openidconnect.googleapis.com/v1/userinfo",
		fieldMap:      FieldMap{Login: "email", Email: "email", FirstName: "given_name", LastName: "family_name"},
	},
	Keycloak: {
		authorizePath: "/realms/{tenant}/protocol/openid-connect/auth",
		tokenPath:     "/realms/{tenant}/protocol/openid-connect/token",
		scope:         "openid email",
		strategy:      DecodeToken,
		fieldMap:      FieldMap{Login: "preferred_username", Email: "email", FirstName: "given_name", LastName: "family_name"},
	},
	Okta: {
		authorizePath: "/oauth2/{tenant}/v1/authorize",
		tokenPath:     "/oauth2/{tenant}/v1/token",
		scope:         "openid profile email",
		strategy:      FetchEndpoint,
		userInfoPath:  "/oauth2/{tenant}/v1/userinfo",
		fieldMap:      FieldMap{Login: "preferred_username", Email: "email", FirstName: "given_name", LastName: "family_name"},
	},
}

// Resolve turns operator settings into a concrete Config. Unknown
// provider names and incomplete Custom settings fail fast with
// ErrInvalidProviderConfig.
func Resolve(s Settings) (Config, error) {
	name := Name(strings.ToLower(strings.TrimSpace(s.Provider)))
	site := strings.TrimSuffix(strings.TrimSpace(s.Site), "/")
	if site == "" {
		return Config{}, fmt.Errorf("%w: site is not set", ErrInvalidProviderConfig)
	}

	if name == Custom {
		return resolveCustom(s, site)
	}

	tpl, ok := builtins[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidProviderConfig, s.Provider)
	}

	expand := func(path string) string {
		return strings.ReplaceAll(path, "{tenant}", s.TenantID)
	}

	return Config{
		Name:             name,
		AuthorizeURL:     absoluteURL(site, expand(tpl.authorizePath)),
		TokenURL:         absoluteURL(site, expand(tpl.tokenPath)),
		DefaultScope:     tpl.scope,
		Strategy:         tpl.strategy,
		UserInfoEndpoint: absoluteURL(site, expand(tpl.userInfoPath)),
		FieldMap:         tpl.fieldMap,
	}, nil
}

func resolveCustom(s Settings, site string) (Config, error) {
	if s.CustomAuthEndpoint == "" || s.CustomTokenEndpoint == "" {
		return Config{}, fmt.Errorf("%w: custom provider requires authorize and token endpoints", ErrInvalidProviderConfig)
	}
	if s.CustomUIDField == "" || s.CustomEmailField == "" {
		return Config{}, fmt.Errorf("%w: custom provider requires uid and email field mappings", ErrInvalidProviderConfig)
	}

	strategy := FetchEndpoint
	endpoint := strings.TrimSpace(s.CustomProfileEndpoint)
	if endpoint == "" {
		// No profile endpoint configured: fall back to decoding the
		// access token payload.
		strategy = DecodeToken
	}

	firstName := s.CustomFirstNameField
	if firstName == "" {
		firstName = "given_name"
	}
	lastName := s.CustomLastNameField
	if lastName == "" {
		lastName = "family_name"
	}

	return Config{
		Name:             Custom,
		AuthorizeURL:     absoluteURL(site, s.CustomAuthEndpoint),
		TokenURL:         absoluteURL(site, s.CustomTokenEndpoint),
		DefaultScope:     s.CustomScope,
		Strategy:         strategy,
		UserInfoEndpoint: absoluteURL(site, endpoint),
		FieldMap: FieldMap{
			Login:     s.CustomUIDField,
			Email:     s.CustomEmailField,
			FirstName: firstName,
			LastName:  lastName,
		},
	}, nil
}

// LogoutURL builds the provider-side logout redirect for the active
// provider. The second return is false when the provider has no
// logout endpoint (GitLab, Google) and local logout should be used.
func LogoutURL(s Settings, clientID, postLogoutRedirect string) (string, bool) {
	site := strings.TrimSuffix(strings.TrimSpace(s.Site), "/")
	switch Name(strings.ToLower(strings.TrimSpace(s.Provider))) {
	case AzureAD:
		return fmt.Sprintf("%s/%s/oauth2/logout?post_logout_redirect_uri=%s", site, clientID, postLogoutRedirect), true
	case Keycloak:
		return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout?post_logout_redirect_uri=%s&client_id=%s",
			site, s.TenantID, postLogoutRedirect, clientID), true
	case Okta:
		return fmt.Sprintf("%s/oauth2/v1/logout?id_token_hint=%s&post_logout_redirect_uri=%s", site, clientID, postLogoutRedirect), true
	case Custom:
		if s.CustomLogoutEndpoint != "" {
			return s.CustomLogoutEndpoint, true
		}
		return "", false
	default:
		return "", false
	}
}

// absoluteURL joins a site base with a path, leaving already absolute
// endpoints (Google) untouched.
func absoluteURL(site, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return site + path
}
