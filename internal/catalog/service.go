package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgdb "github.com/gsatlink/pos-backend/pkg/db"
	"github.com/gsatlink/pos-backend/pkg/db/models"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/pagination"
)

const snapshotCacheName = "catalog"

// SnapshotCache stores a serialized snapshot between screen opens. Backed by
// redis in production; nil-able for tests.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SnapshotKey(name string) string
}

// Service exposes catalog reads, snapshot loading and admin CRUD.
type Service interface {
	GetSnapshot(ctx context.Context) (*Snapshot, error)
	RefreshSnapshot(ctx context.Context) (*Snapshot, error)
	ListPage(ctx context.Context, params pagination.Params) ([]models.CatalogItem, string, error)
	CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        Repository
	cache       SnapshotCache
	snapshotTTL time.Duration
}

// NewService builds a catalog service. The cache is optional.
func NewService(repo Repository, cache SnapshotCache, snapshotTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if snapshotTTL <= 0 {
		snapshotTTL = 5 * time.Minute
	}
	return &service{repo: repo, cache: cache, snapshotTTL: snapshotTTL}, nil
}

// ItemInput carries the payload for catalog item intake.
type ItemInput struct {
	Name         string
	Brand        *string
	StockCode    string
	SerialNo     *string
	Barcode      *string
	ExtraCodes   []string
	UnitPrice    decimal.Decimal
	AvailableQty int
}

type cachedSnapshot struct {
	Items    []models.CatalogItem `json:"items"`
	LoadedAt time.Time            `json:"loaded_at"`
}

// GetSnapshot returns the cached snapshot when fresh, loading from the store
// otherwise. Failures on the cache path fall through to the store.
func (s *service) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.SnapshotKey(snapshotCacheName))
		if err == nil && raw != "" {
			var cached cachedSnapshot
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return NewSnapshot(cached.Items, cached.LoadedAt), nil
			}
		}
	}
	return s.loadAndCache(ctx)
}

// RefreshSnapshot drops the cache and reloads from the store (the manual
// refresh affordance).
func (s *service) RefreshSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cache.SnapshotKey(snapshotCacheName))
	}
	return s.loadAndCache(ctx)
}

func (s *service) loadAndCache(ctx context.Context) (*Snapshot, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	loadedAt := time.Now().UTC()

	if s.cache != nil {
		payload, jsonErr := json.Marshal(cachedSnapshot{Items: items, LoadedAt: loadedAt})
		if jsonErr == nil {
			_ = s.cache.Set(ctx, s.cache.SnapshotKey(snapshotCacheName), string(payload), s.snapshotTTL)
		}
	}

	return NewSnapshot(items, loadedAt), nil
}

// ListPage returns one page of items plus the encoded cursor for the next
// page, empty when the last page was served.
func (s *service) ListPage(ctx context.Context, params pagination.Params) ([]models.CatalogItem, string, error) {
	items, next, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return items, cursor, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item := &models.CatalogItem{
		Name:         strings.TrimSpace(input.Name),
		Brand:        trimPtr(input.Brand),
		StockCode:    strings.TrimSpace(input.StockCode),
		SerialNo:     trimPtr(input.SerialNo),
		Barcode:      trimPtr(input.Barcode),
		ExtraCodes:   trimAll(input.ExtraCodes),
		UnitPrice:    input.UnitPrice,
		AvailableQty: input.AvailableQty,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_catalog_items_stock_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog item")
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Brand = trimPtr(input.Brand)
	item.StockCode = strings.TrimSpace(input.StockCode)
	item.SerialNo = trimPtr(input.SerialNo)
	item.Barcode = trimPtr(input.Barcode)
	item.ExtraCodes = trimAll(input.ExtraCodes)
	item.UnitPrice = input.UnitPrice
	item.AvailableQty = input.AvailableQty

	if err := s.repo.Update(ctx, item); err != nil {
		if pkgdb.IsUniqueViolation(err, "idx_catalog_items_stock_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog item")
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog item")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.SnapshotKey(snapshotCacheName))
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.StockCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock code is required")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.AvailableQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "available quantity cannot be negative")
	}
	return nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
