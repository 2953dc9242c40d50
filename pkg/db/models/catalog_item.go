package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CatalogItem is an inventory product record. Identity is by ID only; the
// code columns exist for scan matching, uniqueness lives in the schema.
type CatalogItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Brand        *string         `gorm:"column:brand"`
	StockCode    string          `gorm:"column:stock_code;not null"`
	SerialNo     *string         `gorm:"column:serial_no"`
	Barcode      *string         `gorm:"column:barcode"`
	ExtraCodes   pq.StringArray  `gorm:"column:extra_codes;type:text[];default:ARRAY[]::text[]"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AvailableQty int             `gorm:"column:available_qty;not null;default:0"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
