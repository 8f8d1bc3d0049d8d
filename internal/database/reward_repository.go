package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RewardRepo persists reward state for one channel. The first claim of a
// stream survives restarts and is cleared when the next stream goes online.
type RewardRepo struct {
	pool    *pgxpool.Pool
	channel string
}

func NewRewardRepo(pool *pgxpool.Pool, channel string) *RewardRepo {
	return &RewardRepo{pool: pool, channel: channel}
}

// SetFirstClaim records user as the first claimer. Later claims overwrite
// earlier ones; the router decides whether to call this at all.
func (r *RewardRepo) SetFirstClaim(ctx context.Context, user string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO first_claims (channel, claimed_by, claimed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (channel) DO UPDATE SET
			claimed_by = EXCLUDED.claimed_by,
			claimed_at = NOW()
	`, r.channel, user)
	if err != nil {
		return fmt.Errorf("failed to set first claim: %w", err)
	}
	return nil
}

// ClearFirstClaim resets the claim for a fresh stream.
func (r *RewardRepo) ClearFirstClaim(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM first_claims WHERE channel = $1`, r.channel)
	if err != nil {
		return fmt.Errorf("failed to clear first claim: %w", err)
	}
	return nil
}

// GetFirstClaim returns who claimed first, or "" when nobody has yet.
func (r *RewardRepo) GetFirstClaim(ctx context.Context) (string, error) {
	var claimedBy string
	err := r.pool.QueryRow(ctx,
		`SELECT claimed_by FROM first_claims WHERE channel = $1`, r.channel).Scan(&claimedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get first claim: %w", err)
	}
	return claimedBy, nil
}
