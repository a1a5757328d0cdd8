package models

import "time"

type Worker struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:30"` // WhatsApp numarası (hesap özeti gönderimi için)
	CreatedAt time.Time
	UpdatedAt time.Time
}
