package user

import (
	"context"
	"database/sql"
	"time"

	"oauth-login-service/internal/db"

	"github.com/google/uuid"
)

// PGStore is the Postgres-backed account store.
type PGStore struct {
	db *db.DB
}

func NewPGStore(db *db.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	// Exact-string match on the stored address; the unique index makes
	// "first match wins" moot but the LIMIT keeps the contract literal.
	row := s.db.QueryRowContext(ctx, `
		SELECT id, login, email, first_name, last_name, hashed_password,
		       status, admin, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
		ORDER BY created_at
		LIMIT 1
	`, email)

	var (
		a         Account
		id        uuid.UUID
		lastLogin sql.NullTime
	)
	err := row.Scan(&id, &a.Login, &a.Email, &a.FirstName, &a.LastName,
		&a.HashedPassword, &a.Status, &a.Admin, &lastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.ID = id.String()
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return &a, nil
}

func (s *PGStore) Create(ctx context.Context, a *Account) error {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, email, first_name, last_name, hashed_password, status, admin, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, a.Login, a.Email, a.FirstName, a.LastName, a.HashedPassword, a.Status, a.Admin, a.LastLoginAt).Scan(&id)
	if err != nil {
		return err
	}
	a.ID = id.String()
	return nil
}

func (s *PGStore) Save(ctx context.Context, a *Account) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET login = $2, email = $3, first_name = $4, last_name = $5,
		    hashed_password = $6, status = $7, admin = $8,
		    last_login_at = $9, updated_at = NOW()
		WHERE id = $1
	`, a.ID, a.Login, a.Email, a.FirstName, a.LastName, a.HashedPassword,
		a.Status, a.Admin, a.LastLoginAt)
	return err
}

func (s *PGStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1
	`, id, at)
	return err
}

func (s *PGStore) AddMembership(ctx context.Context, userID, projectID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memberships (user_id, project_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, userID, projectID, roleID)
	return err
}

func (s *PGStore) RecordFailedLogin(ctx context.Context, login string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failed_logins (login, count, last_failed_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (login) DO UPDATE
		SET count = failed_logins.count + 1, last_failed_at = NOW()
	`, login)
	return err
}
