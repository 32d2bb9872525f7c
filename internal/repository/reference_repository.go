package repository

import (
	"context"

	"github.com/ycmovement/membership-api/internal/models"
	"gorm.io/gorm"
)

// ReferenceRepository defines read-only access to states and LGAs
type ReferenceRepository interface {
	ListStates(ctx context.Context) ([]models.State, error)
	ListLGAs(ctx context.Context, stateID uint) ([]models.LGA, error)
	StateExists(ctx context.Context, id uint) (bool, error)
	LGABelongsToState(ctx context.Context, lgaID, stateID uint) (bool, error)
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new reference-data repository
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListStates(ctx context.Context) ([]models.State, error) {
	var states []models.State
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&states).Error
	return states, err
}

func (r *referenceRepository) ListLGAs(ctx context.Context, stateID uint) ([]models.LGA, error) {
	var lgas []models.LGA
	err := r.db.WithContext(ctx).
		Where("state_id = ?", stateID).
		Order("name ASC").
		Find(&lgas).Error
	return lgas, err
}

func (r *referenceRepository) StateExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.State{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *referenceRepository) LGABelongsToState(ctx context.Context, lgaID, stateID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LGA{}).
		Where("id = ? AND state_id = ?", lgaID, stateID).
		Count(&count).Error
	return count > 0, err
}
