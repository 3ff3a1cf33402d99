package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBuiltinProviders(t *testing.T) {
	tests := []struct {
		provider     string
		authorizeURL string
		tokenURL     string
		scope        string
		strategy     Strategy
		userInfo     string
		loginField   string
		emailField   string
	}{
		{
			provider:     "azuread",
			authorizeURL: "https://idp.example.com/tenant-1/oauth2/authorize",
			tokenURL:     "https://idp.example.com/tenant-1/oauth2/token",
			scope:        "user:email",
			strategy:     DecodeToken,
			loginField:   "unique_name",
			emailField:   "unique_name",
		},
		{
			provider:     "gitlab",
			authorizeURL: "https://idp.example.com/oauth/authorize",
			tokenURL:     "https://idp.example.com/oauth/token",
			scope:        "read_user",
			strategy:     FetchEndpoint,
			userInfo:     "https://idp.example.com/api/v4/user",
			loginField:   "username",
			emailField:   "email",
		},
		{
			provider:     "google",
			authorizeURL: "https://idp.example.com/o/oauth2/v2/auth",
			tokenURL:     "https://oauth2.googleapis.com/token",
			scope:        "profile email",
			strategy:     FetchEndpoint,
			userInfo:     "https://openidconnect.googleapis.com/v1/userinfo",
			loginField:   "email",
			emailField:   "email",
		},
		{
			provider:     "keycloak",
			authorizeURL: "https://idp.example.com/realms/tenant-1/protocol/openid-connect/auth",
			tokenURL:     "https://idp.example.com/realms/tenant-1/protocol/openid-connect/token",
			scope:        "openid email",
			strategy:     DecodeToken,
			loginField:   "preferred_username",
			emailField:   "email",
		},
		{
			provider:     "okta",
			authorizeURL: "https://idp.example.com/oauth2/tenant-1/v1/authorize",
			tokenURL:     "https://idp.example.com/oauth2/tenant-1/v1/token",
			scope:        "openid profile email",
			strategy:     FetchEndpoint,
			userInfo:     "https://idp.example.com/oauth2/tenant-1/v1/userinfo",
			loginField:   "preferred_username",
			emailField:   "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg, err := Resolve(Settings{
				Provider: tt.provider,
				Site:     "https://idp.example.com/",
				TenantID: "tenant-1",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.authorizeURL, cfg.AuthorizeURL)
			assert.Equal(t, tt.tokenURL, cfg.TokenURL)
			assert.Equal(t, tt.scope, cfg.DefaultScope)
			assert.Equal(t, tt.strategy, cfg.Strategy)
			assert.Equal(t, tt.userInfo, cfg.UserInfoEndpoint)
			assert.Equal(t, tt.loginField, cfg.FieldMap.Login)
			assert.Equal(t, tt.emailField, cfg.FieldMap.Email)
		})
	}
}

func TestResolveRejectsUnknownProvider(t *testing.T) {
	_, err := Resolve(Settings{Provider: "github", Site: "https://idp.example.com"})
	assert.ErrorIs(t, err, ErrInvalidProviderConfig)
}

func TestResolveRejectsEmptyProvider(t *testing.T) {
	_, err := Resolve(Settings{Site: "https://idp.example.com"})
	assert.ErrorIs(t, err, ErrInvalidProviderConfig)
}

func TestResolveRequiresSite(t *testing.T) {
	_, err := Resolve(Settings{Provider: "google"})
	assert.ErrorIs(t, err, ErrInvalidProviderConfig)
}

func TestResolveCustomProvider(t *testing.T) {
	cfg, err := Resolve(Settings{
		Provider:              "custom",
		Site:                  "https://sso.example.com",
		CustomAuthEndpoint:    "/auth",
		CustomTokenEndpoint:   "/token",
		CustomProfileEndpoint: "/me",
		CustomScope:           "openid",
		CustomUIDField:        "uid",
		CustomEmailField:      "mail",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://sso.example.com/auth", cfg.AuthorizeURL)
	assert.Equal(t, "https://sso.example.com/token", cfg.TokenURL)
	assert.Equal(t, FetchEndpoint, cfg.Strategy)
	assert.Equal(t, "https://sso.example.com/me", cfg.UserInfoEndpoint)
	assert.Equal(t, "uid", cfg.FieldMap.Login)
	assert.Equal(t, "mail", cfg.FieldMap.Email)
	assert.Equal(t, "given_name", cfg.FieldMap.FirstName)
	assert.Equal(t, "family_name", cfg.FieldMap.LastName)
}

func TestResolveCustomBlankProfileEndpointDecodesToken(t *testing.T) {
	cfg, err := Resolve(Settings{
		Provider:            "custom",
		Site:                "https://sso.example.com",
		CustomAuthEndpoint:  "/auth",
		CustomTokenEndpoint: "/token",
		CustomUIDField:      "uid",
		CustomEmailField:    "mail",
	})
	require.NoError(t, err)
	assert.Equal(t, DecodeToken, cfg.Strategy)
}

func TestResolveCustomFailsFastOnMissingFields(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
	}{
		{"missing token endpoint", Settings{
			Provider: "custom", Site: "https://sso.example.com",
			CustomAuthEndpoint: "/auth", CustomUIDField: "uid", CustomEmailField: "mail",
		}},
		{"missing uid field", Settings{
			Provider: "custom", Site: "https://sso.example.com",
			CustomAuthEndpoint: "/auth", CustomTokenEndpoint: "/token", CustomEmailField: "mail",
		}},
		{"missing email field", Settings{
			Provider: "custom", Site: "https://sso.example.com",
			CustomAuthEndpoint: "/auth", CustomTokenEndpoint: "/token", CustomUIDField: "uid",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.settings)
			assert.ErrorIs(t, err, ErrInvalidProviderConfig)
		})
	}
}

func TestLogoutURL(t *testing.T) {
	s := Settings{Site: "https://idp.example.com", TenantID: "tenant-1"}

	s.Provider = "azuread"
	url, ok := LogoutURL(s, "client-1", "https://app.example.com/login")
	assert.True(t, ok)
	assert.Equal(t, "https://idp.example.com/client-1/oauth2/logout?post_logout_redirect_uri=https://app.example.com/login", url)

	s.Provider = "keycloak"
	url, ok = LogoutURL(s, "client-1", "https://app.example.com/login")
	assert.True(t, ok)
	assert.Equal(t,
		"https://idp.example.com/realms/tenant-1/protocol/openid-connect/logout?post_logout_redirect_uri=https://app.example.com/login&client_id=client-1",
		url)

	s.Provider = "okta"
	url, ok = LogoutURL(s, "client-1", "https://app.example.com/login")
	assert.True(t, ok)
	assert.Equal(t, "https://idp.example.com/oauth2/v1/logout?id_token_hint=client-1&post_logout_redirect_uri=https://app.example.com/login", url)

	for _, name := range []string{"gitlab", "google"} {
		s.Provider = name
		_, ok = LogoutURL(s, "client-1", "https://app.example.com/login")
		assert.False(t, ok, name)
	}

	s.Provider = "custom"
	s.CustomLogoutEndpoint = "https://sso.example.com/bye"
	url, ok = LogoutURL(s, "client-1", "https://app.example.com/login")
	assert.True(t, ok)
	assert.Equal(t, "https://sso.example.com/bye", url)
}
