package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advance - çalışana gelecekteki hakedişine karşılık verilen avans.
// is_settled tasfiye sırasında false->true döner, geri alınamaz.
type Advance struct {
	ID        uint `gorm:"primaryKey"`
	WorkerID  uint `gorm:"index;not null"`
	Worker    Worker
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Note      string          `gorm:"size:255"`
	Date      time.Time       `gorm:"index;not null"`
	IsSettled bool            `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
