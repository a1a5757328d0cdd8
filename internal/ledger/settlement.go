package ledger

import (
	"time"

	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettleWorker - çalışanın açık hesap dönemini kapatır ("tasfiye").
// Bakiye kadar SalaryPayment makbuzu oluşturur, çalışanın ödenmemiş üretim
// kayıtlarını is_paid=true ve açık avanslarını is_settled=true yapar.
// Üç parçalı yazım tek transaction içindedir: biri başarısız olursa hiçbiri kalmaz.
func SettleWorker(db *gorm.DB, workerID uint) (*models.SalaryPayment, error) {
	var worker models.Worker
	if err := db.First(&worker, "id = ?", workerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}

	balance, err := WorkerBalance(db, workerID)
	if err != nil {
		return nil, err
	}
	if balance.Sign() <= 0 {
		return nil, ErrNoBalance
	}

	cash, err := TotalCash(db)
	if err != nil {
		return nil, err
	}
	if balance.GreaterThan(cash) {
		return nil, ErrInsufficientCash
	}

	payment := models.SalaryPayment{
		WorkerID:   workerID,
		Amount:     balance,
		Date:       today(),
		PeriodFrom: "Dönem tasfiyesi",
		PeriodTo:   today().Format("2006-01-02"),
		Details:    "Hesap kapatıldı, yeni dönem başladı (avans mahsubu dahil)",
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProductionRecord{}).
			Where("worker_id = ? AND is_paid = ? AND is_customer_work = ?", workerID, false, false).
			Update("is_paid", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Advance{}).
			Where("worker_id = ? AND is_settled = ?", workerID, false).
			Update("is_settled", true).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// PayPartialSalary - bakiyenin tamamını beklemeden nakit maaş dilimi öder.
// amount >= bakiye ise tam tasfiye gibi davranır (tüm kayıtlar kapanır);
// aksi halde yalnızca makbuz yazılır, hiçbir üretim/avans kaydına dokunulmaz.
// Bu asimetri bilinçlidir: kısmi ödeme belirli kalemleri kapatmaz, açık deftere
// karşı düz bir nakit çıkışıdır.
func PayPartialSalary(db *gorm.DB, workerID uint, amount decimal.Decimal) (*models.SalaryPayment, error) {
	var worker models.Worker
	if err := db.First(&worker, "id = ?", workerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}

	cash, err := TotalCash(db)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(cash) {
		return nil, ErrInsufficientCash
	}

	balance, err := WorkerBalance(db, workerID)
	if err != nil {
		return nil, err
	}

	fullSettle := amount.GreaterThanOrEqual(balance)

	payment := models.SalaryPayment{
		WorkerID:   workerID,
		Amount:     amount,
		Date:       today(),
		PeriodFrom: "Ara ödeme",
		PeriodTo:   today().Format("2006-01-02"),
		Details:    "Hesaba mahsuben nakit maaş dilimi",
	}
	if fullSettle {
		payment.PeriodFrom = "Dönem tasfiyesi"
		payment.Details = "Hesap kapatıldı, yeni dönem başladı (avans mahsubu dahil)"
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if !fullSettle {
			return nil
		}
		if err := tx.Model(&models.ProductionRecord{}).
			Where("worker_id = ? AND is_paid = ? AND is_customer_work = ?", workerID, false, false).
			Update("is_paid", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.Advance{}).
			Where("worker_id = ? AND is_settled = ?", workerID, false).
			Update("is_settled", true).Error
	})
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
