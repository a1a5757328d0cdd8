package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryPayment - tasfiye anında oluşturulan maaş makbuzu. Normal akışta asla
// güncellenmez veya silinmez.
type SalaryPayment struct {
	ID         uint `gorm:"primaryKey"`
	WorkerID   uint `gorm:"index;not null"`
	Worker     Worker
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date       time.Time       `gorm:"index;not null"`
	PeriodFrom string          `gorm:"size:50"`
	PeriodTo   string          `gorm:"size:50"`
	Details    string          `gorm:"size:255"`
	CreatedAt  time.Time
}
