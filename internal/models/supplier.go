package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SupplierOrderStatus string

const (
	OrderStatusActive    SupplierOrderStatus = "active"
	OrderStatusCompleted SupplierOrderStatus = "completed"
)

// SupplierOrder - tedarikçiden alınan iş siparişi. total_paid yalnızca
// SupplierPayment kaydıyla birlikte, aynı transaction içinde artar.
type SupplierOrder struct {
	ID           uint                `gorm:"primaryKey"`
	SupplierName string              `gorm:"size:100;index;not null"`
	ItemName     string              `gorm:"size:150;not null"`
	TotalPieces  float64             `gorm:"not null"`
	RatePerPiece decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Status       SupplierOrderStatus `gorm:"size:20;not null;default:'active'"`
	TotalPaid    decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SupplierPayment - tedarikçiden tahsil edilen dilim. Sadece eklenir.
type SupplierPayment struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	Order     SupplierOrder
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date      time.Time       `gorm:"index;not null"`
	Note      string          `gorm:"size:255"`
	CreatedAt time.Time
}
