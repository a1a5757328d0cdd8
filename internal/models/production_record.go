package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRecord - tamamlanan bir iş kaydı.
// is_customer_work=true ise kayıt doğrudan müşteri geliridir: supplier_rate kasaya
// giren tutardır, worker_id/quantity/worker_rate bakiye hesabına girmez.
// is_paid yalnızca tasfiye sırasında false->true döner, asla geri alınmaz.
type ProductionRecord struct {
	ID             uint  `gorm:"primaryKey"`
	WorkerID       *uint `gorm:"index"`
	Worker         *Worker
	OrderID        *uint           `gorm:"index"` // opsiyonel: hangi tedarikçi siparişi için yapıldı
	TaskName       string          `gorm:"size:150;not null"`
	Quantity       float64         `gorm:"not null"`
	WorkerRate     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsCustomerWork bool            `gorm:"not null;default:false;index"`
	IsPaid         bool            `gorm:"not null;default:false;index"`
	RecordedAt     time.Time       `gorm:"index;not null"`
	SupplierRate   decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
