package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/groovemind/djbooth/internal/models"
)

// ProfileRepositoryInterface defines the interface for DJ profile
// repository operations. This interface enables better testability by
// allowing mock implementations.
type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.DJProfile, error)
	GetActive(ctx context.Context) (*models.DJProfile, error)
	List(ctx context.Context) ([]*models.DJProfile, error)
	Upsert(ctx context.Context, profile *models.DJProfile) error
	Activate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
