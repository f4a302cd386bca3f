package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"collectbook/internal/domain"
)

type CollectorTokenRepository struct {
	db *sql.DB
}

func NewCollectorTokenRepository(db *sql.DB) *CollectorTokenRepository {
	return &CollectorTokenRepository{db: db}
}

// FindByPlainToken resolves a bearer token of the form "<id>|<secret>" (or a
// bare secret) against the stored sha256 hash. Expired tokens never match.
func (r *CollectorTokenRepository) FindByPlainToken(ctx context.Context, plainToken string) (*domain.CollectorToken, error) {
	plainToken = strings.TrimSpace(plainToken)
	if plainToken == "" {
		return nil, errors.New("empty token")
	}

	var (
		tokenID   *int64
		tokenPart string
	)

	if idx := strings.Index(plainToken, "|"); idx > 0 {
		if id, err := strconv.ParseInt(plainToken[:idx], 10, 64); err == nil {
			tokenID = &id
		}
		tokenPart = plainToken[idx+1:]
	} else {
		tokenPart = plainToken
	}

	sum := sha256.Sum256([]byte(tokenPart))
	hashStr := fmt.Sprintf("%x", sum)

	var tok domain.CollectorToken

	if tokenID != nil {
		query := `
			SELECT id, token, collector_id, expires_at
			FROM collector_tokens
			WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)
		`
		err := r.db.QueryRowContext(ctx, query, *tokenID, time.Now()).Scan(
			&tok.ID, &tok.TokenHash, &tok.CollectorID, &tok.ExpiresAt)
		if err == nil && tok.TokenHash == hashStr {
			return &tok, nil
		}
	}

	query := `
		SELECT id, token, collector_id, expires_at
		FROM collector_tokens
		WHERE token = $1 AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRowContext(ctx, query, hashStr, time.Now()).Scan(
		&tok.ID, &tok.TokenHash, &tok.CollectorID, &tok.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("token not found")
	}
	if err != nil {
		return nil, err
	}

	return &tok, nil
}
