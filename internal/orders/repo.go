package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/shophub/internal/repo"
	"github.com/angelmondragon/shophub/pkg/db/models"
	"github.com/angelmondragon/shophub/pkg/enums"
	"github.com/angelmondragon/shophub/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, sessionID string, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB(ctx).
		Where("id = ? AND session_id = ?", id, sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListBySession returns the session's orders newest first. The returned cursor points at the last
// row of the page and is nil when nothing follows it.
func (r *repository) ListBySession(ctx context.Context, sessionID string, query ListQuery) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)

	q := r.DB(ctx).
		Model(&models.Order{}).
		Where("session_id = ?", sessionID)
	if query.Cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Order
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// MarkCancelled flips a cancellable order to cancelled and reports whether a row changed.
func (r *repository) MarkCancelled(ctx context.Context, sessionID string, id uuid.UUID, at time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ? AND session_id = ? AND status IN ?", id, sessionID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusConfirmed}).
		Updates(map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
