package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleLine snapshots one basket line inside a SaleRecord.
type SaleLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	ItemName  string          `gorm:"column:item_name;not null"`
	StockCode string          `gorm:"column:stock_code;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

func (SaleLine) TableName() string {
	return "sale_lines"
}
