// Package user owns the local account records the login flow resolves
// identities onto.
package user

import (
	"context"
	"time"
)

// Status mirrors the account lifecycle the resolver drives.
type Status string

const (
	StatusRegistered Status = "registered" // created, pending activation
	StatusActive     Status = "active"
	StatusLocked     Status = "locked"
)

type Account struct {
	ID             string
	Login          string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
	Status         Status
	Admin          bool
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Account) Registered() bool { return a.Status == StatusRegistered }
func (a *Account) Active() bool     { return a.Status == StatusActive }
func (a *Account) Locked() bool     { return a.Status == StatusLocked }

// Store is the account persistence boundary. FindByEmail matches the
// stored address exactly (no normalization) and returns (nil, nil)
// when no account exists.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Save(ctx context.Context, a *Account) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	AddMembership(ctx context.Context, userID, projectID, roleID string) error
	// RecordFailedLogin feeds the invalid-credentials counter that
	// backs the lockout mechanism.
	RecordFailedLogin(ctx context.Context, login string) error
}

// Notifier triggers the externally owned account mail workflows.
type Notifier interface {
	SendActivationEmail(ctx context.Context, a *Account) error
	SendAdminApprovalRequest(ctx context.Context, a *Account) error
}

// NoopNotifier satisfies Notifier for deployments without a mailer.
type NoopNotifier struct{}

func (NoopNotifier) SendActivationEmail(context.Context, *Account) error      { return nil }
func (NoopNotifier) SendAdminApprovalRequest(context.Context, *Account) error { return nil }
