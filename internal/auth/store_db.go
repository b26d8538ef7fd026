package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout    = 1 * time.Second
	queryTimeout   = 3 * time.Second
	pgUniqueCode   = "23505"
	sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id);
CREATE INDEX IF NOT EXISTS sessions_created_at_idx ON sessions (created_at);
`
)

var ErrSessionExists = errors.New("session already exists")

// PostgresStore keeps sessions in PostgreSQL so they survive restarts and
// are shared by every auth replica. It expects the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, sessionsSchema); err != nil {
			return errors.Wrap(err, "create sessions table")
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO sessions (id, user_id, email, created_at)
			VALUES ($1, $2, $3, $4)
		`, sess.ID, sess.UserID, sess.Email, sess.CreatedAt)

		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return ErrSessionExists
		}
		return errors.Wrap(err, "insert session")
	})
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Session, bool, error) {
	var sess Session
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, user_id, email, created_at
			FROM sessions
			WHERE id = $1
		`, id).Scan(&sess.ID, &sess.UserID, &sess.Email, &sess.CreatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, errors.Wrap(err, "select session")
	}
	return sess, true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
			return errors.Wrap(err, "delete session")
		}
		return nil
	})
}

func (s *PostgresStore) DeleteBefore(ctx context.Context, t time.Time) (int, error) {
	var n int64
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < $1`, t)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "delete expired sessions")
	}
	return int(n), nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
