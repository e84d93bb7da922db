package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"devmatch-service/internal/config"
	"devmatch-service/internal/logger"
)

// Connect opens the connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	logger.Info().Int("statements", len(migrations)).Msg("database migrations applied")
	return nil
}

// users is shared with the auth service, which owns email and password_hash.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        age INT NOT NULL CHECK (age >= 18),
        bio VARCHAR(500) NOT NULL DEFAULT '',
        skills TEXT[] NOT NULL DEFAULT '{}',
        profile_picture TEXT NOT NULL DEFAULT '',
        location TEXT NOT NULL DEFAULT '',
        github TEXT NOT NULL DEFAULT '',
        linkedin TEXT NOT NULL DEFAULT '',
        experience_level TEXT NOT NULL DEFAULT 'Junior'
            CHECK (experience_level IN ('Junior', 'Mid-Level', 'Senior', 'Lead', 'Architect')),
        job_title TEXT NOT NULL DEFAULT '',
        company TEXT NOT NULL DEFAULT '',
        looking_for TEXT NOT NULL DEFAULT 'Networking'
            CHECK (looking_for IN ('Collaboration', 'Mentorship', 'Networking', 'Job Opportunities', 'Friendship')),
        is_online BOOLEAN NOT NULL DEFAULT FALSE,
        last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS users_skills_idx ON users USING GIN (skills);`,
	// target_id has no foreign key: a pass toward an unknown id is stored as-is.
	`CREATE TABLE IF NOT EXISTS swipes (
        seq BIGSERIAL,
        user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        target_id UUID NOT NULL,
        action TEXT NOT NULL CHECK (action IN ('like', 'pass')),
        swiped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (user_id, target_id),
        CHECK (user_id <> target_id)
    );`,
	`CREATE INDEX IF NOT EXISTS swipes_target_idx ON swipes (target_id, action);`,
	`CREATE TABLE IF NOT EXISTS matches (
        user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        match_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (user_id, match_id),
        CHECK (user_id <> match_id)
    );`,
	`CREATE TABLE IF NOT EXISTS chats (
        id UUID PRIMARY KEY,
        user1_id UUID NOT NULL REFERENCES users(id),
        user2_id UUID NOT NULL REFERENCES users(id),
        last_message_content TEXT,
        last_message_sender UUID,
        last_message_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (user1_id, user2_id),
        CHECK (user1_id < user2_id)
    );`,
	`CREATE TABLE IF NOT EXISTS messages (
        id BIGSERIAL PRIMARY KEY,
        chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
        sender_id UUID NOT NULL REFERENCES users(id),
        content TEXT NOT NULL CHECK (content <> ''),
        read BOOLEAN NOT NULL DEFAULT FALSE,
        read_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS messages_chat_idx ON messages (chat_id, id);`,
	`CREATE TABLE IF NOT EXISTS chat_unread (
        chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
        user_id UUID NOT NULL REFERENCES users(id),
        count INT NOT NULL DEFAULT 0 CHECK (count >= 0),
        PRIMARY KEY (chat_id, user_id)
    );`,
}
