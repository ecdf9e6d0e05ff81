package repository

import (
	"context"

	"github.com/employsmart/employsmart/internal/domain"
)

// CreateSession inserts a login session.
func (q *Queries) CreateSession(ctx context.Context, s *domain.Session) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sessions (id, recruiter_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)`,
		s.ID, s.RecruiterID, s.TokenHash, s.ExpiresAt,
	)
	return err
}

// GetSessionByTokenHash fetches a session by its hashed token.
func (q *Queries) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var s domain.Session
	err := q.db.QueryRowContext(ctx, `
		SELECT id, recruiter_id, token_hash, expires_at, created_at
		FROM sessions WHERE token_hash = $1`, tokenHash,
	).Scan(&s.ID, &s.RecruiterID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSessionByTokenHash removes a session on logout.
func (q *Queries) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
