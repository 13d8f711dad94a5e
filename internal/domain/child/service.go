package child

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/carelog/internal/repository"
)

// Service handles child directory operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new child service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines child creation inputs.
type CreateRequest struct {
	ID        string
	FirstName string
	LastName  string
}

// Create adds a child to the directory.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Child, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	c := &Child{
		ID:        id,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating child: %w", err)
	}
	return c, nil
}

// Get fetches a child by ID.
func (s *Service) Get(ctx context.Context, id string) (*Child, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, fmt.Errorf("getting child: %w", err)
	}
	return c, nil
}

// List returns all children ordered by name.
func (s *Service) List(ctx context.Context) ([]Child, error) {
	return s.repo.List(ctx)
}

// Delete removes a child from the directory. Activity records and history
// for the child are left in place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChildNotFound
		}
		return fmt.Errorf("deleting child: %w", err)
	}
	s.logger.InfoContext(ctx, "child deleted; activity records retained", "child_id", id)
	return nil
}
