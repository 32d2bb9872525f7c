package services

import (
	"context"
	"errors"

	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
)

// ErrInvalidStateID is returned before any query runs when the requested
// state id is not a positive integer.
var ErrInvalidStateID = errors.New("Invalid state ID")

// ReferenceService serves the state and LGA reference data backing the
// registration form's cascading dropdowns. Pure reads, no side effects.
type ReferenceService struct {
	repo repository.ReferenceRepository
}

func NewReferenceService(repo repository.ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

// ListStates returns all states sorted by name
func (s *ReferenceService) ListStates(ctx context.Context) ([]models.State, error) {
	return s.repo.ListStates(ctx)
}

// ListLGAs returns the LGAs of one state sorted by name. A non-positive
// state id is rejected without touching storage.
func (s *ReferenceService) ListLGAs(ctx context.Context, stateID int) ([]models.LGA, error) {
	if stateID <= 0 {
		return nil, ErrInvalidStateID
	}
	return s.repo.ListLGAs(ctx, uint(stateID))
}
