package session

import (
	"context"
	"time"
)

// Session represents an authenticated user session. It stores
// identity pointers only, no auth state.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry
}

// FlowSession is the transient state of one login attempt, created at
// initiate and consumed at callback. The CSRF token is single use.
type FlowSession struct {
	CSRFToken      string `json:"csrf_token"`
	BackURL        string `json:"back_url"`
	Autologin      string `json:"autologin"`
	OAuthAutologin string `json:"oauth_autologin"`
}

// Store persists authenticated user sessions.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// FlowStore carries per-browser-session login-flow state: the flow
// session, one-shot flash messages and the pending 2FA/password-change
// flags other subsystems leave behind.
type FlowStore interface {
	PutFlow(ctx context.Context, sid string, f FlowSession) error
	// ConsumeCSRF returns the stashed CSRF token and deletes it,
	// regardless of what the caller compares it against. A missing
	// flow session yields "".
	ConsumeCSRF(ctx context.Context, sid string) (string, error)
	// ConsumeFlowParams returns the remaining flow state and clears it.
	ConsumeFlowParams(ctx context.Context, sid string) (FlowSession, error)
	PutFlash(ctx context.Context, sid, message string) error
	TakeFlash(ctx context.Context, sid string) (string, error)
	// ClearPendingFlags removes must-activate-2FA and password-change
	// markers once a provider login succeeded.
	ClearPendingFlags(ctx context.Context, sid string) error
	SetPendingFlag(ctx context.Context, sid, flag string) error
	HasPendingFlag(ctx context.Context, sid, flag string) (bool, error)
}

const (
	flowTTL  = 15 * time.Minute
	flashTTL = 10 * time.Minute
	flagTTL  = 24 * time.Hour
)

// Pending flag names shared with the 2FA and password subsystems.
const (
	FlagMustActivateTwoFA = "must_activate_twofa"
	FlagPasswordChange    = "pwd"
)
