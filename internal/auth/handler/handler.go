package handler

import (
	"errors"
	"net/http"
	"time"

	"oauth-login-service/internal/auth/oauthclient"
	"oauth-login-service/internal/auth/provider"
	"oauth-login-service/internal/auth/resolver"
	"oauth-login-service/internal/auth/rolecheck"
	"oauth-login-service/internal/auth/userinfo"
	"oauth-login-service/internal/config"
	"oauth-login-service/internal/i18n"
	"oauth-login-service/internal/logger"
	"oauth-login-service/internal/metrics"
	"oauth-login-service/internal/secrets"
	"oauth-login-service/internal/session"
	"oauth-login-service/internal/user"
	"oauth-login-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	signinPath      = "/login"
	defaultAfterURL = "/my/account"
	sessionLifetime = 24 * time.Hour
)

type Handler struct {
	cfg      config.Config
	flows    session.FlowStore
	sessions session.Store
	users    user.Store
	resolver *resolver.Resolver
	box      *secrets.Box
}

func NewHandler(
	cfg config.Config,
	flows session.FlowStore,
	sessions session.Store,
	users user.Store,
	accountResolver *resolver.Resolver,
	box *secrets.Box,
) *Handler {
	return &Handler{
		cfg:      cfg,
		flows:    flows,
		sessions: sessions,
		users:    users,
		resolver: accountResolver,
		box:      box,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth", h.OAuth)
	r.GET("/oauth/callback", h.OAuthCallback)
	r.GET(signinPath, h.Login)
	r.POST("/logout", h.Logout)
}

// OAuth initiates the provider flow: it stashes the CSRF token plus
// the return-path parameters in the flow session and redirects to the
// provider's authorize endpoint.
func (h *Handler) OAuth(c *gin.Context) {
	sid := h.browserSession(c)

	providerConfig, err := provider.Resolve(h.cfg.ProviderSettings())
	if err != nil {
		logger.Error("oauth initiate failed", map[string]any{"error": err.Error()})
		h.signinRedirect(c, sid, i18n.Lookup("oauth_invalid_provider"))
		return
	}

	csrfToken := utils.RandomString(32)
	flow := session.FlowSession{
		CSRFToken:      csrfToken,
		BackURL:        c.Query("back_url"),
		Autologin:      c.Query("autologin"),
		OAuthAutologin: c.Query("oauth_autologin"),
	}
	if err := h.flows.PutFlow(c.Request.Context(), sid, flow); err != nil {
		logger.Error("failed to stash flow session", map[string]any{"error": err.Error()})
		h.signinRedirect(c, sid, err.Error())
		return
	}

	authorizeURL := h.client(providerConfig).AuthCodeURL(
		h.callbackURL(),
		csrfToken,
		providerConfig.DefaultScope,
	)

	metrics.AuthorizeRedirects.Inc()
	c.Redirect(http.StatusFound, authorizeURL)
}

// OAuthCallback completes the flow: CSRF validation, code exchange,
// identity normalization, role gate, account resolution. Every error
// funnels into a flash message and a redirect to the sign-in page; no
// partial session state survives a failure.
func (h *Handler) OAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()
	sid := h.browserSessionID(c)

	// The stored token is consumed before any comparison: single use,
	// and a lost session fails closed.
	storedToken, err := h.flows.ConsumeCSRF(ctx, sid)
	if err != nil {
		logger.Error("failed to read flow session", map[string]any{"error": err.Error()})
		storedToken = ""
	}
	state := c.Query("state")
	if state == "" || state != storedToken {
		metrics.CallbackFailures.WithLabelValues("csrf_mismatch").Inc()
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": i18n.Lookup("error_invalid_authenticity_token"),
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("provider returned error on callback", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		h.failCallback(c, sid, "provider_error", i18n.Lookup("notice_access_denied"))
		return
	}

	providerConfig, err := provider.Resolve(h.cfg.ProviderSettings())
	if err != nil {
		logger.Error("oauth callback misconfigured", map[string]any{"error": err.Error()})
		h.failCallback(c, sid, "invalid_provider", i18n.Lookup("oauth_invalid_provider"))
		return
	}
	client := h.client(providerConfig)

	token, err := client.ExchangeCode(ctx, c.Query("code"), h.callbackURL())
	if err != nil {
		logger.Error("token exchange failed", map[string]any{"error": err.Error()})
		h.failCallback(c, sid, "token_exchange", i18n.Lookup("notice_access_denied"))
		return
	}

	identity, err := userinfo.Normalize(ctx, client, providerConfig, token)
	if err != nil {
		logger.Error("identity normalization failed", map[string]any{"error": err.Error()})
		if errors.Is(err, userinfo.ErrMissingEmail) {
			h.failCallback(c, sid, "missing_email", i18n.Lookup("oauth_no_verified_email"))
			return
		}
		h.failCallback(c, sid, "user_info", i18n.Lookup("notice_access_denied"))
		return
	}

	decision := rolecheck.Evaluate(identity.RawClaims, h.cfg.RoleClaimPath)
	if decision.Checked && !decision.IsAuthorized {
		logger.Info("authentication failed due to a missing role in the token", map[string]any{
			"provider": identity.Provider,
		})
		if err := h.users.RecordFailedLogin(ctx, identity.Email); err != nil {
			logger.Error("failed to record invalid credentials", map[string]any{"error": err.Error()})
		}
		h.failCallback(c, sid, "unauthorized", i18n.Lookup("notice_account_invalid_credentials"))
		return
	}

	params, err := h.flows.ConsumeFlowParams(ctx, sid)
	if err != nil {
		logger.Error("failed to consume flow params", map[string]any{"error": err.Error()})
	}

	result, err := h.resolver.Resolve(ctx, identity, decision)
	if err != nil {
		logger.Error("account resolution failed", map[string]any{"error": err.Error()})
		h.failCallback(c, sid, "account_lookup", i18n.Lookup("notice_access_denied"))
		return
	}

	metrics.LoginOutcomes.WithLabelValues(result.Outcome.String()).Inc()

	switch result.Outcome {
	case resolver.OutcomeLoggedIn:
		h.establishSession(c, sid, result.Account, params)
	case resolver.OutcomePendingActivation, resolver.OutcomePendingAdminApproval:
		h.signinRedirect(c, sid, i18n.Lookup("notice_account_pending"))
	case resolver.OutcomePendingEmailActivation:
		h.signinRedirect(c, sid, i18n.Lookup("notice_account_register_done"))
	case resolver.OutcomeAccountLocked:
		h.signinRedirect(c, sid, i18n.Lookup("notice_account_locked"))
	case resolver.OutcomeInvalidCredentials:
		h.signinRedirect(c, sid, i18n.Lookup("notice_account_invalid_credentials"))
	default:
		h.signinRedirect(c, sid, i18n.Lookup("notice_account_creation_failed"))
	}
}

func (h *Handler) establishSession(c *gin.Context, sid string, account *user.Account, params session.FlowSession) {
	ctx := c.Request.Context()

	sessionID, err := session.GenerateID()
	if err != nil {
		logger.Error("failed to generate session id", map[string]any{"error": err.Error()})
		h.signinRedirect(c, sid, i18n.Lookup("notice_access_denied"))
		return
	}

	now := time.Now()
	sess := session.Session{
		SessionID: sessionID,
		UserID:    account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionLifetime),
	}
	if err := h.sessions.Create(ctx, sess); err != nil {
		logger.Error("failed to persist session", map[string]any{"error": err.Error()})
		h.signinRedirect(c, sid, i18n.Lookup("notice_access_denied"))
		return
	}

	secure := c.Request.TLS != nil
	session.SetCookie(c.Writer, sessionID, sess.ExpiresAt, session.CookieOptions{
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	// A provider login supersedes pending 2FA-activation and
	// password-change requests.
	if err := h.flows.ClearPendingFlags(ctx, sid); err != nil {
		logger.Error("failed to clear pending flags", map[string]any{"error": err.Error()})
	}

	if truthy(params.OAuthAutologin) {
		session.SetAutologinCookie(c.Writer, utils.RandomString(32), "/", secure)
	}

	logger.Info("login successful", map[string]any{
		"user_id": account.ID,
		"ip":      c.ClientIP(),
	})

	target := params.BackURL
	if target == "" {
		target = defaultAfterURL
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) failCallback(c *gin.Context, sid, reason, message string) {
	metrics.CallbackFailures.WithLabelValues(reason).Inc()
	h.signinRedirect(c, sid, message)
}

func (h *Handler) signinRedirect(c *gin.Context, sid, message string) {
	if sid != "" && message != "" {
		if err := h.flows.PutFlash(c.Request.Context(), sid, message); err != nil {
			logger.Error("failed to store flash", map[string]any{"error": err.Error()})
		}
	}
	c.Redirect(http.StatusFound, signinPath)
}

func (h *Handler) client(cfg provider.Config) *oauthclient.Client {
	return oauthclient.New(cfg, h.cfg.OAuthClientID, func() (string, error) {
		return h.box.Decrypt(h.cfg.OAuthClientSecret)
	})
}

func (h *Handler) callbackURL() string {
	return h.cfg.BaseURL + "/oauth/callback"
}

// browserSession returns the browser session id, minting a cookie when
// the browser has none yet.
func (h *Handler) browserSession(c *gin.Context) string {
	if sid := h.browserSessionID(c); sid != "" {
		return sid
	}
	sid, err := session.GenerateID()
	if err != nil {
		logger.Error("failed to generate browser session id", map[string]any{"error": err.Error()})
		return ""
	}
	session.SetBrowserCookie(c.Writer, sid, c.Request.TLS != nil)
	return sid
}

func (h *Handler) browserSessionID(c *gin.Context) string {
	sid, err := c.Cookie(session.BrowserCookieName)
	if err != nil {
		return ""
	}
	return sid
}

func truthy(v string) bool {
	return v != "" && v != "0" && v != "false"
}
