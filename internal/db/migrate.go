package db

import (
	"context"
	"database/sql"
)

// DB wraps the shared sql handle so stores take a single dependency.
type DB struct {
	*sql.DB
}

const schemaMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    login text NOT NULL DEFAULT '',
    email text NOT NULL,
    first_name text NOT NULL DEFAULT '',
    last_name text NOT NULL DEFAULT '',
    hashed_password text NOT NULL DEFAULT '',
    status text NOT NULL DEFAULT 'registered',
    admin boolean NOT NULL DEFAULT false,
    last_login_at timestamptz,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique
ON users (email);

CREATE TABLE IF NOT EXISTS memberships (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    project_id text NOT NULL,
    role_id text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT memberships_user_project_unique UNIQUE (user_id, project_id)
);

CREATE TABLE IF NOT EXISTS failed_logins (
    login text PRIMARY KEY,
    count integer NOT NULL DEFAULT 0,
    last_failed_at timestamptz NOT NULL DEFAULT NOW()
);
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}
