// Package i18n resolves user-facing notices by symbolic key, so handlers
// never embed display strings directly.
package i18n

var messages = map[string]string{
	"oauth_invalid_provider":             "Invalid OAuth provider",
	"oauth_no_verified_email":            "No verified email returned by the provider",
	"notice_access_denied":               "Access denied",
	"notice_account_invalid_credentials": "Invalid user or password",
	"notice_account_pending":             "Your account was created and is now pending administrator approval.",
	"notice_account_register_done":       "Account was successfully created. An email containing the instructions to activate your account was sent.",
	"notice_account_activated":           "Your account has been activated. You can now log in.",
	"notice_account_locked":              "Your account is locked.",
	"notice_account_creation_failed":     "Your account could not be created automatically. Please contact an administrator.",
	"error_invalid_authenticity_token":   "Invalid form authenticity token.",
	"notice_logged_out":                  "You have been logged out.",
}

// Lookup returns the message for a symbolic key, or the key itself
// when no translation is registered.
func Lookup(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
