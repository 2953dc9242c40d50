package basket

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/repo"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// Repository persists sale records.
type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error
	Replace(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	ListPage(ctx context.Context, params pagination.Params) ([]models.SaleRecord, *pagination.Cursor, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a sale repository over the provided connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) Create(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

// Replace rewrites an existing sale record and all of its lines.
func (r *repository) Replace(ctx context.Context, tx *gorm.DB, record *models.SaleRecord) error {
	db := tx.WithContext(ctx)

	var existing models.SaleRecord
	if err := db.First(&existing, "id = ?", record.ID).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.SaleLine{}, "sale_id = ?", record.ID).Error; err != nil {
		return err
	}
	return db.Save(record).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	var record models.SaleRecord
	if err := r.DB(ctx).Preload("Lines").First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListPage fetches one buffered page of sale records; the extra row signals a
// next page and is trimmed off. The returned cursor is the last row served.
func (r *repository) ListPage(ctx context.Context, params pagination.Params) ([]models.SaleRecord, *pagination.Cursor, error) {
	query := r.DB(ctx).
		Preload("Lines").
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var records []models.SaleRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		return records, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return records, nil, nil
}
