package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivationRecord captures a subscription activation or airtime load applied
// to a GSAT customer.
type ActivationRecord struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null"`
	Kind        string          `gorm:"column:kind;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Reference   *string         `gorm:"column:reference"`
	ActivatedAt time.Time       `gorm:"column:activated_at;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ActivationRecord) TableName() string {
	return "activation_records"
}
