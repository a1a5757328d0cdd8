package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Machine - taksitle alınan dikiş makinesi. paid_amount yalnızca taksit
// ödemesiyle artar, SupplierOrder.total_paid ile aynı kurala tabidir.
type Machine struct {
	ID                 uint            `gorm:"primaryKey"`
	Name               string          `gorm:"size:100;not null"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MonthlyInstallment decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
