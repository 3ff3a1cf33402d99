package handler

import (
	"net/http"
	"net/url"

	"oauth-login-service/internal/auth/provider"
	"oauth-login-service/internal/i18n"
	"oauth-login-service/internal/logger"
	"oauth-login-service/internal/session"

	"github.com/gin-gonic/gin"
)

// Login is the sign-in interceptor. A browser carrying the autologin
// cookie skips the page entirely and is bounced straight into the
// provider flow; everyone else gets the sign-in payload with any
// pending flash message.
func (h *Handler) Login(c *gin.Context) {
	if cookie, err := c.Cookie(session.AutologinCookieName); err == nil && cookie != "" {
		target := "/oauth?autologin=1"
		if back := c.Query("back_url"); back != "" {
			target += "&back_url=" + url.QueryEscape(back)
		}
		c.Redirect(http.StatusFound, target)
		return
	}

	body := gin.H{"sign_in": "/oauth"}
	if sid := h.browserSessionID(c); sid != "" {
		if flash, err := h.flows.TakeFlash(c.Request.Context(), sid); err == nil && flash != "" {
			body["notice"] = flash
		}
	}
	c.JSON(http.StatusOK, body)
}

// Logout tears down the local session and, when configured, chains
// into the provider's logout endpoint. The autologin cookie is cleared
// unconditionally so a half-failed logout cannot re-login the browser.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	session.ClearAutologinCookie(c.Writer, "/")

	loggedIn := false
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		if sess, err := h.sessions.Get(ctx, cookie); err == nil && sess != nil {
			loggedIn = true
		}
		if err := h.sessions.Delete(ctx, cookie); err != nil {
			logger.Error("failed to delete session", map[string]any{"error": err.Error()})
		}
		session.ClearCookie(c.Writer, session.CookieOptions{
			Secure:   c.Request.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if loggedIn && h.cfg.ProviderLogout {
		target, ok := provider.LogoutURL(h.cfg.ProviderSettings(), h.cfg.OAuthClientID, h.cfg.BaseURL+signinPath)
		if ok {
			c.Redirect(http.StatusFound, target)
			return
		}
		logger.Info("provider logout not implemented", map[string]any{
			"provider": h.cfg.OAuthProvider,
		})
	}

	h.signinRedirect(c, h.browserSessionID(c), i18n.Lookup("notice_logged_out"))
}
