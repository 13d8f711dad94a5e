package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/repository"
)

// ChildRepository implements child.Repository for SQLite
type ChildRepository struct {
	db *DB
}

// NewChildRepository creates a new ChildRepository
func NewChildRepository(db *DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create creates a new child
func (r *ChildRepository) Create(ctx context.Context, c *child.Child) error {
	query := `
		INSERT INTO children (id, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		formatTime(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: child %s already exists", repository.ErrInvalidInput, c.ID)
		}
		return wrapErr("failed to create child", err)
	}

	return nil
}

// Get retrieves a child by ID
func (r *ChildRepository) Get(ctx context.Context, id string) (*child.Child, error) {
	query := `
		SELECT id, first_name, last_name, created_at
		FROM children
		WHERE id = ?
	`

	c, err := scanChild(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("failed to get child", err)
	}

	return c, nil
}

// List returns all children ordered by name
func (r *ChildRepository) List(ctx context.Context) ([]child.Child, error) {
	query := `
		SELECT id, first_name, last_name, created_at
		FROM children
		ORDER BY first_name ASC, last_name ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapErr("failed to list children", err)
	}
	defer rows.Close()

	children := []child.Child{}
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating child rows", err)
	}

	return children, nil
}

// Delete removes a child. Activity rows keyed by the child are not touched.
func (r *ChildRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return wrapErr("failed to delete child", err)
	}
	return requireAffected(result)
}

func scanChild(row scanner) (*child.Child, error) {
	var c child.Child
	var createdAt string
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = t
	return &c, nil
}
