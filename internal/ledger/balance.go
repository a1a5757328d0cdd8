// Package ledger - defter ve bakiye motoru.
//
// Tüm parasal türetmeler (çalışan bakiyesi, kasadaki nakit) ham kayıt
// listelerinden her çağrıda yeniden hesaplanır; hiçbir toplam veritabanında
// saklanmaz. İç aritmetik decimal ile kesindir, yuvarlama yalnızca gösterim
// katmanında yapılır.
package ledger

import (
	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WorkerEarned - çalışanın güncel hakedişi: ödenmemiş, müşteri işi olmayan
// üretim kayıtlarının adet x parça ücreti toplamı. Olmayan çalışan için 0 döner.
func WorkerEarned(db *gorm.DB, workerID uint) (decimal.Decimal, error) {
	var records []models.ProductionRecord
	err := db.
		Where("worker_id = ? AND is_paid = ? AND is_customer_work = ?", workerID, false, false).
		Find(&records).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.WorkerRate.Mul(decimal.NewFromFloat(r.Quantity)))
	}
	return total, nil
}

// WorkerAdvances - çalışanın henüz mahsup edilmemiş avans toplamı.
func WorkerAdvances(db *gorm.DB, workerID uint) (decimal.Decimal, error) {
	var advances []models.Advance
	err := db.
		Where("worker_id = ? AND is_settled = ?", workerID, false).
		Find(&advances).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, a := range advances {
		total = total.Add(a.Amount)
	}
	return total, nil
}

// WorkerBalance - hakediş - açık avanslar. Negatif olabilir (çalışan avansla
// hakedişinin önüne geçmiştir); sistem bunu engellemez, sadece uyarır.
func WorkerBalance(db *gorm.DB, workerID uint) (decimal.Decimal, error) {
	earned, err := WorkerEarned(db, workerID)
	if err != nil {
		return decimal.Zero, err
	}
	advances, err := WorkerAdvances(db, workerID)
	if err != nil {
		return decimal.Zero, err
	}
	return earned.Sub(advances), nil
}

// CashBreakdown - kasadaki nakdin bileşenleri (kâr raporu ekranı için).
type CashBreakdown struct {
	SupplierIncome  decimal.Decimal `json:"supplier_income"`  // tedarikçi tahsilatları
	CustomerIncome  decimal.Decimal `json:"customer_income"`  // müşteri işi gelirleri
	Expenses        decimal.Decimal `json:"expenses"`         // genel giderler
	Salaries        decimal.Decimal `json:"salaries"`         // ödenen maaşlar
	Withdrawals     decimal.Decimal `json:"withdrawals"`      // sahip çekimleri
	MachinePayments decimal.Decimal `json:"machine_payments"` // makine taksitleri
	Total           decimal.Decimal `json:"total"`
}

// TotalCash - kasadaki nakit.
func TotalCash(db *gorm.DB) (decimal.Decimal, error) {
	b, err := Breakdown(db)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// Breakdown - kasa formülünün tamamı:
// (tedarikçi tahsilatları + müşteri işi gelirleri)
// - (giderler + maaşlar + çekimler + makine taksitleri)
func Breakdown(db *gorm.DB) (*CashBreakdown, error) {
	bd := &CashBreakdown{
		SupplierIncome:  decimal.Zero,
		CustomerIncome:  decimal.Zero,
		Expenses:        decimal.Zero,
		Salaries:        decimal.Zero,
		Withdrawals:     decimal.Zero,
		MachinePayments: decimal.Zero,
	}

	var orders []models.SupplierOrder
	if err := db.Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, o := range orders {
		bd.SupplierIncome = bd.SupplierIncome.Add(o.TotalPaid)
	}

	var customerWork []models.ProductionRecord
	if err := db.Where("is_customer_work = ?", true).Find(&customerWork).Error; err != nil {
		return nil, err
	}
	for _, r := range customerWork {
		bd.CustomerIncome = bd.CustomerIncome.Add(r.SupplierRate)
	}

	var expenses []models.Expense
	if err := db.Find(&expenses).Error; err != nil {
		return nil, err
	}
	for _, e := range expenses {
		bd.Expenses = bd.Expenses.Add(e.Amount)
	}

	var salaries []models.SalaryPayment
	if err := db.Find(&salaries).Error; err != nil {
		return nil, err
	}
	for _, p := range salaries {
		bd.Salaries = bd.Salaries.Add(p.Amount)
	}

	var withdrawals []models.Withdrawal
	if err := db.Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	for _, w := range withdrawals {
		bd.Withdrawals = bd.Withdrawals.Add(w.Amount)
	}

	var machines []models.Machine
	if err := db.Find(&machines).Error; err != nil {
		return nil, err
	}
	for _, m := range machines {
		bd.MachinePayments = bd.MachinePayments.Add(m.PaidAmount)
	}

	bd.Total = bd.SupplierIncome.Add(bd.CustomerIncome).
		Sub(bd.Expenses).Sub(bd.Salaries).Sub(bd.Withdrawals).Sub(bd.MachinePayments)

	return bd, nil
}
