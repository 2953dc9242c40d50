package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/repo"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// Repository persists catalog items.
type Repository interface {
	ListActive(ctx context.Context) ([]models.CatalogItem, error)
	ListPage(ctx context.Context, params pagination.Params) ([]models.CatalogItem, *pagination.Cursor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a catalog repository over the provided connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) ListActive(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

// ListPage fetches one buffered page; the extra row signals a next page and
// is trimmed off. The returned cursor is the last row actually served.
func (r *repository) ListPage(ctx context.Context, params pagination.Params) ([]models.CatalogItem, *pagination.Cursor, error) {
	query := r.DB(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		return nil, nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(items) > limit {
		items = items[:limit]
		last := items[limit-1]
		return items, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return items, nil, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.CatalogItem) error {
	return r.DB(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.CatalogItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
