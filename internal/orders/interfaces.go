package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, sessionID string, id uuid.UUID) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string, query ListQuery) ([]models.Order, *pagination.Cursor, error)
	MarkCancelled(ctx context.Context, sessionID string, id uuid.UUID, at time.Time) (bool, error)
}

// ListQuery carries the normalized cursor window for a session listing.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
