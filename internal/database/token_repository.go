package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Joxtacy/joxtabot/internal/crypto"
)

// ErrTokenNotFound is returned when no token is stored under the given name.
var ErrTokenNotFound = errors.New("token not found")

// TokenRepo stores named OAuth tokens, encrypted at rest.
type TokenRepo struct {
	pool   *pgxpool.Pool
	crypto crypto.Service
}

func NewTokenRepo(pool *pgxpool.Pool, cryptoService crypto.Service) *TokenRepo {
	return &TokenRepo{pool: pool, crypto: cryptoService}
}

// Save upserts the token under name.
func (r *TokenRepo) Save(ctx context.Context, name, token string) error {
	encrypted, err := r.crypto.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO bot_tokens (name, token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = NOW()
	`, name, encrypted)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load returns the decrypted token stored under name.
func (r *TokenRepo) Load(ctx context.Context, name string) (string, error) {
	var encrypted string
	err := r.pool.QueryRow(ctx,
		`SELECT token FROM bot_tokens WHERE name = $1`, name).Scan(&encrypted)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	token, err := r.crypto.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	return token, nil
}
