package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"oauth-login-service/internal/auth/provider"
	"oauth-login-service/internal/auth/resolver"
	"oauth-login-service/internal/logger"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	// SessionBackend selects "redis" or "memory" (single instance only).
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"redis"`

	// SecretboxMasterKey is the base64 AES-256 key settings secrets are
	// sealed with.
	SecretboxMasterKey string `env:"SECRETBOX_MASTER_KEY"`

	// Provider selection. The client secret is stored encrypted and only
	// decrypted immediately before the token exchange.
	OAuthProvider     string `env:"OAUTH_PROVIDER"`
	OAuthSite         string `env:"OAUTH_SITE"`
	OAuthClientID     string `env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET"`
	OAuthTenantID     string `env:"OAUTH_TENANT_ID"`

	// RoleClaimPath gates logins on a dotted claim path; empty disables
	// role checking.
	RoleClaimPath string `env:"ROLE_CLAIM_PATH"`

	// SelfRegistration: off | email | automatic | manual.
	SelfRegistration    string `env:"SELF_REGISTRATION" envDefault:"off"`
	AutoAssignProjectID string `env:"AUTO_ASSIGN_PROJECT"`
	AutoAssignRoleID    string `env:"AUTO_ASSIGN_ROLE"`

	UpdateLogin    bool `env:"UPDATE_LOGIN"`
	ProviderLogout bool `env:"PROVIDER_LOGOUT"`

	// Custom provider overrides, required when OAUTH_PROVIDER=custom.
	CustomAuthEndpoint    string `env:"CUSTOM_AUTH_ENDPOINT"`
	CustomTokenEndpoint   string `env:"CUSTOM_TOKEN_ENDPOINT"`
	CustomProfileEndpoint string `env:"CUSTOM_PROFILE_ENDPOINT"`
	CustomLogoutEndpoint  string `env:"CUSTOM_LOGOUT_ENDPOINT"`
	CustomScope           string `env:"CUSTOM_SCOPE"`
	CustomUIDField        string `env:"CUSTOM_UID_FIELD"`
	CustomEmailField      string `env:"CUSTOM_EMAIL_FIELD"`
	CustomFirstNameField  string `env:"CUSTOM_FIRSTNAME_FIELD"`
	CustomLastNameField   string `env:"CUSTOM_LASTNAME_FIELD"`
}

func Load() Config {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("failed to parse configuration", map[string]any{
			"error": err.Error(),
		})
	}
	return cfg
}

// ProviderSettings maps the flat env config onto the provider
// registry's settings value.
func (c Config) ProviderSettings() provider.Settings {
	return provider.Settings{
		Provider:              c.OAuthProvider,
		Site:                  c.OAuthSite,
		TenantID:              c.OAuthTenantID,
		CustomAuthEndpoint:    c.CustomAuthEndpoint,
		CustomTokenEndpoint:   c.CustomTokenEndpoint,
		CustomProfileEndpoint: c.CustomProfileEndpoint,
		CustomLogoutEndpoint:  c.CustomLogoutEndpoint,
		CustomScope:           c.CustomScope,
		CustomUIDField:        c.CustomUIDField,
		CustomEmailField:      c.CustomEmailField,
		CustomFirstNameField:  c.CustomFirstNameField,
		CustomLastNameField:   c.CustomLastNameField,
	}
}

// ResolverPolicy maps the flat env config onto the account resolver's
// policy.
func (c Config) ResolverPolicy() resolver.Policy {
	return resolver.Policy{
		SelfRegistration:    resolver.SelfRegistration(c.SelfRegistration),
		UpdateLogin:         c.UpdateLogin,
		AutoAssignProjectID: c.AutoAssignProjectID,
		AutoAssignRoleID:    c.AutoAssignRoleID,
	}
}
