package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/repository"
)

// APIKeyRepository maps bearer tokens to authors. Only token hashes are stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create registers token for author.
func (r *APIKeyRepository) Create(ctx context.Context, token string, author activity.Author, description string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(author.ID) == "" {
		return repository.ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key_hash, author_id, author_label, created_at, description)
		VALUES (?, ?, ?, ?, ?)`,
		HashToken(token), author.ID, author.Label, formatTime(time.Now()), description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: api key already registered", repository.ErrInvalidInput)
		}
		return wrapErr("failed to create api key", err)
	}
	return nil
}

// ResolveAuthor returns the author a token was issued to and records its use.
func (r *APIKeyRepository) ResolveAuthor(ctx context.Context, token string) (activity.Author, error) {
	hash := HashToken(token)
	var author activity.Author
	err := r.db.QueryRowContext(ctx,
		`SELECT author_id, author_label FROM api_keys WHERE key_hash = ?`, hash,
	).Scan(&author.ID, &author.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Author{}, repository.ErrNotFound
	}
	if err != nil {
		return activity.Author{}, wrapErr("failed to resolve api key", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, formatTime(time.Now()), hash,
	); err != nil {
		return activity.Author{}, wrapErr("failed to touch api key", err)
	}
	return author, nil
}

// HashToken returns the hex SHA-256 of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
