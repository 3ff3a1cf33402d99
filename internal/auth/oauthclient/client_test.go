package oauthclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"oauth-login-service/internal/auth/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func staticSecret(s string) SecretFunc {
	return func() (string, error) { return s, nil }
}

func TestAuthCodeURLEmbedsScopeAndState(t *testing.T) {
	c := New(provider.Config{
		AuthorizeURL: "https://idp.example.com/oauth/authorize",
		TokenURL:     "https://idp.example.com/oauth/token",
	}, "client-1", staticSecret("s"))

	raw := c.AuthCodeURL("https://app.example.com/oauth/callback", "state-token", "profile email")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "https://idp.example.com/oauth/authorize", u.Scheme+"://"+u.Host+u.Path)
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Equal(t, "profile email", q.Get("scope"))
	assert.Equal(t, "https://app.example.com/oauth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestExchangeCode(t *testing.T) {
	var gotCode, gotRedirect string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.FormValue("code")
		gotRedirect = r.FormValue("redirect_uri")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := New(provider.Config{TokenURL: srv.URL + "/token"}, "client-1", staticSecret("s3cret"))

	token, err := c.ExchangeCode(context.Background(), "auth-code", "https://app.example.com/oauth/callback")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.AccessToken)
	assert.Equal(t, "auth-code", gotCode)
	assert.Equal(t, "https://app.example.com/oauth/callback", gotRedirect)
}

func TestExchangeCodeWrapsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(provider.Config{TokenURL: srv.URL + "/token"}, "client-1", staticSecret("s"))

	_, err := c.ExchangeCode(context.Background(), "auth-code", "https://app.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestExchangeCodeSecretReadFailure(t *testing.T) {
	c := New(provider.Config{TokenURL: "https://idp.example.com/token"}, "client-1",
		func() (string, error) { return "", assert.AnError })

	_, err := c.ExchangeCode(context.Background(), "auth-code", "https://app.example.com/oauth/callback")
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"jdoe","email":"jdoe@example.com"}`))
	}))
	defer srv.Close()

	c := New(provider.Config{}, "client-1", staticSecret("s"))
	token := &oauth2.Token{AccessToken: "tok-1", TokenType: "bearer"}

	payload, err := c.FetchUserInfo(context.Background(), token, srv.URL+"/api/v4/user")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", payload["username"])
	assert.Equal(t, "jdoe@example.com", payload["email"])
}

func TestFetchUserInfoNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(provider.Config{}, "client-1", staticSecret("s"))

	_, err := c.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "t"}, srv.URL)
	assert.ErrorIs(t, err, ErrUserInfoFetch)
}

func TestFetchUserInfoNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := New(provider.Config{}, "client-1", staticSecret("s"))

	_, err := c.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "t"}, srv.URL)
	assert.ErrorIs(t, err, ErrUserInfoFetch)
}
