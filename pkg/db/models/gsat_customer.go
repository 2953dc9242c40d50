package models

import (
	"time"

	"github.com/google/uuid"
)

// GSATCustomer is a satellite subscription customer record.
type GSATCustomer struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountNo   string             `gorm:"column:account_no;not null;uniqueIndex"`
	BoxSerial   *string            `gorm:"column:box_serial"`
	CardSerial  *string            `gorm:"column:card_serial"`
	FullName    string             `gorm:"column:full_name;not null"`
	Phone       *string            `gorm:"column:phone"`
	Address     *string            `gorm:"column:address"`
	Plan        *string            `gorm:"column:plan"`
	Activations []ActivationRecord `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (GSATCustomer) TableName() string {
	return "gsat_customers"
}
