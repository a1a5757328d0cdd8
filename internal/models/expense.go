package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uint            `gorm:"primaryKey"`
	Category    string          `gorm:"size:100;index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"size:255"`
	Date        time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
