// Package resolver decides what happens after a provider identity has
// been normalized and authorized: log in, queue for activation, or
// provision a new account according to the self-registration policy.
package resolver

import (
	"context"
	"strings"
	"time"

	"oauth-login-service/internal/auth"
	"oauth-login-service/internal/auth/rolecheck"
	"oauth-login-service/internal/logger"
	"oauth-login-service/internal/user"
	"oauth-login-service/internal/utils"
)

// Outcome is the terminal result of one resolution.
type Outcome int

const (
	OutcomeLoggedIn Outcome = iota
	OutcomePendingActivation
	OutcomePendingEmailActivation
	OutcomePendingAdminApproval
	OutcomeAccountLocked
	OutcomeInvalidCredentials
	OutcomeCreationFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoggedIn:
		return "logged_in"
	case OutcomePendingActivation:
		return "pending_activation"
	case OutcomePendingEmailActivation:
		return "pending_email_activation"
	case OutcomePendingAdminApproval:
		return "pending_admin_approval"
	case OutcomeAccountLocked:
		return "account_locked"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeCreationFailed:
		return "creation_failed"
	}
	return "unknown"
}

// SelfRegistration selects how a first-seen identity becomes an account.
type SelfRegistration string

const (
	SelfRegOff       SelfRegistration = "off"
	SelfRegByEmail   SelfRegistration = "email"
	SelfRegAutomatic SelfRegistration = "automatic"
	SelfRegManual    SelfRegistration = "manual"
)

type Policy struct {
	SelfRegistration    SelfRegistration
	UpdateLogin         bool
	AutoAssignProjectID string
	AutoAssignRoleID    string
}

type Result struct {
	Outcome Outcome
	Account *user.Account
}

type Resolver struct {
	store    user.Store
	notifier user.Notifier
	policy   Policy
	now      func() time.Time
}

func New(store user.Store, notifier user.Notifier, policy Policy) *Resolver {
	if notifier == nil {
		notifier = user.NoopNotifier{}
	}
	return &Resolver{
		store:    store,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

// Resolve maps an authorized identity onto local account state. The
// error return covers store lookup failures only; every policy result
// is an Outcome. Secondary writes (login sync, admin flag) are
// best-effort and never revert an outcome already decided.
func (r *Resolver) Resolve(ctx context.Context, identity *auth.Identity, decision rolecheck.Decision) (Result, error) {
	acct, err := r.store.FindByEmail(ctx, identity.Email)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if acct != nil {
		result = r.resolveExisting(ctx, acct, identity)
	} else {
		result = r.resolveUnknown(ctx, identity)
	}

	r.syncAdminFlag(ctx, result, decision)
	return result, nil
}

func (r *Resolver) resolveExisting(ctx context.Context, acct *user.Account, identity *auth.Identity) Result {
	switch {
	case acct.Registered():
		return Result{Outcome: OutcomePendingActivation, Account: acct}
	case acct.Active():
		now := r.now()
		if err := r.store.UpdateLastLogin(ctx, acct.ID, now); err != nil {
			logger.Error("failed to update last login", map[string]any{
				"user_id": acct.ID, "error": err.Error(),
			})
		}
		acct.LastLoginAt = &now

		if login := identity.Login; r.policy.UpdateLogin {
			if login == "" {
				login = identity.UniqueName()
			}
			if login != "" && login != acct.Login {
				acct.Login = login
				if err := r.store.Save(ctx, acct); err != nil {
					logger.Error("failed to sync login from identity", map[string]any{
						"user_id": acct.ID, "error": err.Error(),
					})
				}
			}
		}
		return Result{Outcome: OutcomeLoggedIn, Account: acct}
	default:
		return Result{Outcome: OutcomeAccountLocked, Account: acct}
	}
}

func (r *Resolver) resolveUnknown(ctx context.Context, identity *auth.Identity) Result {
	mode := r.policy.SelfRegistration
	if mode == "" || mode == SelfRegOff {
		if err := r.store.RecordFailedLogin(ctx, identity.Email); err != nil {
			logger.Error("failed to record invalid credentials", map[string]any{
				"error": err.Error(),
			})
		}
		return Result{Outcome: OutcomeInvalidCredentials}
	}

	acct, err := r.buildAccount(identity)
	if err != nil {
		logger.Error("failed to build account from identity", map[string]any{"error": err.Error()})
		return Result{Outcome: OutcomeCreationFailed}
	}

	switch mode {
	case SelfRegByEmail:
		if err := r.store.Create(ctx, acct); err != nil {
			return r.creationFailed(err)
		}
		if err := r.notifier.SendActivationEmail(ctx, acct); err != nil {
			return r.creationFailed(err)
		}
		return Result{Outcome: OutcomePendingEmailActivation, Account: acct}

	case SelfRegAutomatic:
		now := r.now()
		acct.Status = user.StatusActive
		acct.LastLoginAt = &now
		if err := r.store.Create(ctx, acct); err != nil {
			return r.creationFailed(err)
		}
		if project := r.policy.AutoAssignProjectID; project != "" {
			if err := r.store.AddMembership(ctx, acct.ID, project, r.policy.AutoAssignRoleID); err != nil {
				logger.Error("failed to auto-assign project membership", map[string]any{
					"user_id": acct.ID, "project_id": project, "error": err.Error(),
				})
			}
		}
		return Result{Outcome: OutcomeLoggedIn, Account: acct}

	default: // manual approval by an administrator
		if err := r.store.Create(ctx, acct); err != nil {
			return r.creationFailed(err)
		}
		if err := r.notifier.SendAdminApprovalRequest(ctx, acct); err != nil {
			return r.creationFailed(err)
		}
		return Result{Outcome: OutcomePendingAdminApproval, Account: acct}
	}
}

// buildAccount constructs an unregistered account from identity facts.
// The display name splits into first/last; the mapped claim fields are
// the fallback.
func (r *Resolver) buildAccount(identity *auth.Identity) (*user.Account, error) {
	firstName, lastName := splitName(identity.Name)
	if firstName == "" {
		firstName = identity.FirstName
	}
	if lastName == "" {
		lastName = identity.LastName
	}

	login := identity.Login
	if login == "" {
		login = identity.UniqueName()
	}

	hashed, err := user.HashPassword(utils.RandomString(24))
	if err != nil {
		return nil, err
	}

	return &user.Account{
		Login:          login,
		Email:          identity.Email,
		FirstName:      firstName,
		LastName:       lastName,
		HashedPassword: hashed,
		Status:         user.StatusRegistered,
	}, nil
}

func (r *Resolver) creationFailed(err error) Result {
	logger.Error("on-the-fly account creation failed", map[string]any{"error": err.Error()})
	return Result{Outcome: OutcomeCreationFailed}
}

// syncAdminFlag persists the role gate's admin verdict on the account
// that was resolved or created. Failures are logged; the outcome the
// user already received stands.
func (r *Resolver) syncAdminFlag(ctx context.Context, result Result, decision rolecheck.Decision) {
	if !decision.Checked || result.Account == nil || result.Account.ID == "" {
		return
	}
	if result.Account.Admin == decision.IsAdmin {
		return
	}
	result.Account.Admin = decision.IsAdmin
	if err := r.store.Save(ctx, result.Account); err != nil {
		logger.Error("failed to sync admin flag", map[string]any{
			"user_id": result.Account.ID, "error": err.Error(),
		})
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}
