package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/service-order-scheduler/internal/persistence"
)

const sessionColumns = `id, token, subject_id, role, employee_id, display_name, expires_at, revoked_at, created_at, updated_at`

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
	now  func() time.Time
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, now: time.Now}
}

// CreateSession stores a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	session.ID = strings.TrimSpace(session.ID)
	session.Token = strings.TrimSpace(session.Token)
	if session.ID == "" || session.Token == "" || session.SubjectID == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	now := r.now().UTC().Truncate(time.Second)
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.CreatedAt = session.CreatedAt.UTC().Truncate(time.Second)
	session.ExpiresAt = session.ExpiresAt.UTC().Truncate(time.Second)

	var revokedAt sql.NullString
	if session.RevokedAt != nil {
		revoked := session.RevokedAt.UTC().Truncate(time.Second)
		session.RevokedAt = &revoked
		revokedAt = sql.NullString{String: formatTime(revoked), Valid: true}
	}

	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Token,
		session.SubjectID,
		session.Role,
		session.EmployeeID,
		session.DisplayName,
		formatTime(session.ExpiresAt),
		revokedAt,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	return session, nil
}

// GetSession retrieves a session by its token value.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)
	return scanSession(row)
}

// RevokeSession marks a session as revoked based on its token value.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	at := formatTime(revokedAt)

	var session persistence.Session
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?), updated_at = ? WHERE token = ?`,
			at, at, token,
		)
		if err != nil {
			return mapError(err)
		}
		if err := checkAffected(result); err != nil {
			return err
		}
		session, err = scanSession(tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token))
		return err
	})
	if err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// DeleteExpiredSessions removes sessions that expired on or before the reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(reference)); err != nil {
		return mapError(err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString
	if err := row.Scan(
		&session.ID,
		&session.Token,
		&session.SubjectID,
		&session.Role,
		&session.EmployeeID,
		&session.DisplayName,
		&expiresAt,
		&revokedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Session{}, mapError(err)
	}

	var err error
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
	}
	return session, nil
}
