package gsat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gsatlink/pos-backend/internal/repo"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

// Repository persists GSAT customers and their activation history.
type Repository interface {
	ListAll(ctx context.Context) ([]models.GSATCustomer, error)
	ListPage(ctx context.Context, params pagination.Params) ([]models.GSATCustomer, *pagination.Cursor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GSATCustomer, error)
	Create(ctx context.Context, customer *models.GSATCustomer) error
	Update(ctx context.Context, customer *models.GSATCustomer) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateActivation(ctx context.Context, record *models.ActivationRecord) error
	ListActivations(ctx context.Context, customerID uuid.UUID) ([]models.ActivationRecord, error)
	DeleteActivation(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds a GSAT repository over the provided connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) ListAll(ctx context.Context) ([]models.GSATCustomer, error) {
	var customers []models.GSATCustomer
	err := r.DB(ctx).
		Order("created_at ASC, id ASC").
		Find(&customers).Error
	return customers, err
}

// ListPage fetches one buffered page of customers; the extra row signals a
// next page and is trimmed off. The returned cursor is the last row served.
func (r *repository) ListPage(ctx context.Context, params pagination.Params) ([]models.GSATCustomer, *pagination.Cursor, error) {
	query := r.DB(ctx).
		Order("created_at ASC, id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var customers []models.GSATCustomer
	if err := query.Find(&customers).Error; err != nil {
		return nil, nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	if len(customers) > limit {
		customers = customers[:limit]
		last := customers[limit-1]
		return customers, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return customers, nil, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.GSATCustomer, error) {
	var customer models.GSATCustomer
	if err := r.DB(ctx).Preload("Activations").First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) Create(ctx context.Context, customer *models.GSATCustomer) error {
	return r.DB(ctx).Create(customer).Error
}

func (r *repository) Update(ctx context.Context, customer *models.GSATCustomer) error {
	return r.DB(ctx).Omit("Activations").Save(customer).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.GSATCustomer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateActivation(ctx context.Context, record *models.ActivationRecord) error {
	return r.DB(ctx).Create(record).Error
}

func (r *repository) ListActivations(ctx context.Context, customerID uuid.UUID) ([]models.ActivationRecord, error) {
	var records []models.ActivationRecord
	err := r.DB(ctx).
		Where("customer_id = ?", customerID).
		Order("activated_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

func (r *repository) DeleteActivation(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Delete(&models.ActivationRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
