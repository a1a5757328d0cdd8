package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal - işletme sahibinin net kârdan çektiği kişisel tutar. Sadece eklenir.
type Withdrawal struct {
	ID        uint            `gorm:"primaryKey"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Note      string          `gorm:"size:255"`
	Date      time.Time       `gorm:"index;not null"`
	CreatedAt time.Time
}
