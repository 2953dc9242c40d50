package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is a persisted basket. Lines are snapshots of the catalog at the
// moment of sale, never live references.
type SaleRecord struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OperatorName *string         `gorm:"column:operator_name"`
	CustomerName *string         `gorm:"column:customer_name"`
	Note         *string         `gorm:"column:note"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Lines        []SaleLine      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (SaleRecord) TableName() string {
	return "sale_records"
}
