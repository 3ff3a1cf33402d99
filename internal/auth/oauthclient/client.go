// Package oauthclient performs the provider-facing OAuth2 legwork:
// building the authorization URL, exchanging the code for a token and
// fetching user-info payloads.
package oauthclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"oauth-login-service/internal/auth/provider"

	"golang.org/x/oauth2"
)

var (
	ErrTokenExchange = errors.New("oauthclient: token exchange failed")
	ErrUserInfoFetch = errors.New("oauthclient: user info fetch failed")
)

// SecretFunc returns the decrypted client secret. It is called once,
// immediately before the token exchange, so the plaintext secret is
// never held longer than needed.
type SecretFunc func() (string, error)

type Client struct {
	cfg        provider.Config
	clientID   string
	secret     SecretFunc
	httpClient *http.Client
}

func New(cfg provider.Config, clientID string, secret SecretFunc) *Client {
	return &Client{
		cfg:      cfg,
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthCodeURL builds the provider authorization URL. No network call
// is made; the result embeds the redirect URI, state and scope.
func (c *Client) AuthCodeURL(redirectURI, state, scope string) string {
	oc := c.oauthConfig("", redirectURI, scope)
	return oc.AuthCodeURL(state)
}

// ExchangeCode performs the authorization-code token exchange. The
// client secret is read just-in-time and never logged.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	secret, err := c.secret()
	if err != nil {
		return nil, fmt.Errorf("%w: read client secret: %v", ErrTokenExchange, err)
	}

	oc := c.oauthConfig(secret, redirectURI, "")
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return token, nil
}

// FetchUserInfo retrieves the user-info payload with the bearer token.
// Non-2xx responses and non-JSON bodies fail with ErrUserInfoFetch.
func (c *Client) FetchUserInfo(ctx context.Context, token *oauth2.Token, endpoint string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUserInfoFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFetch, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrUserInfoFetch, err)
	}
	return payload, nil
}

func (c *Client) oauthConfig(secret, redirectURI, scope string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: secret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.cfg.AuthorizeURL,
			TokenURL: c.cfg.TokenURL,
		},
		Scopes: strings.Fields(scope),
	}
}
