package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshRepo tracks issued refresh tokens (by digest) so they can be
// rotated on use and revoked on logout.
type RefreshRepo struct {
	db *pgxpool.Pool
}

func NewRefreshRepo(db *pgxpool.Pool) *RefreshRepo {
	return &RefreshRepo{db: db}
}

func (r *RefreshRepo) Store(ctx context.Context, userID int64, tokenDigest string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenDigest, expiresAt)
	return err
}

// Consume revokes the presented token and reports whether it was still
// live. Revoke-and-check in one statement, so a token presented twice
// concurrently rotates exactly once.
func (r *RefreshRepo) Consume(ctx context.Context, userID int64, tokenDigest string) (bool, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND token_hash = $2
		  AND revoked_at IS NULL AND expires_at > now()
		RETURNING id`,
		userID, tokenDigest).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Revoke invalidates one token on logout. Already-revoked or unknown
// tokens are a no-op.
func (r *RefreshRepo) Revoke(ctx context.Context, userID int64, tokenDigest string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = $1 AND token_hash = $2 AND revoked_at IS NULL`,
		userID, tokenDigest)
	return err
}

// RevokeAll invalidates every live token for a user, used after a
// password change.
func (r *RefreshRepo) RevokeAll(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	return err
}
