package ledger

import (
	"testing"

	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countOpenRecords(t *testing.T, db *gorm.DB, workerID uint) (openProduction, openAdvances int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.ProductionRecord{}).
		Where("worker_id = ? AND is_paid = ?", workerID, false).
		Count(&openProduction).Error)
	require.NoError(t, db.Model(&models.Advance{}).
		Where("worker_id = ? AND is_settled = ?", workerID, false).
		Count(&openAdvances).Error)
	return
}

func TestSettleWorkerClosesPeriod(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Samira")

	addProduction(t, db, w.ID, 50, "0.2")
	addAdvance(t, db, w.ID, "4")
	addCash(t, db, "100")

	payment, err := SettleWorker(db, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "6.0", payment.Amount.StringFixed(1))

	// Dönem kapandı: açık kayıt kalmadı, bakiye sıfır.
	openProd, openAdv := countOpenRecords(t, db, w.ID)
	assert.Zero(t, openProd)
	assert.Zero(t, openAdv)

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestSettleWorkerStartsFreshPeriod(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Samira")

	addProduction(t, db, w.ID, 10, "1")
	addCash(t, db, "100")

	_, err := SettleWorker(db, w.ID)
	require.NoError(t, err)

	// Tasfiyeden sonra gelen üretim yeni dönemin hakedişidir.
	addProduction(t, db, w.ID, 5, "2")

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10")))
}

func TestSettleWorkerNoBalance(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Leyla")
	addCash(t, db, "100")

	_, err := SettleWorker(db, w.ID)
	assert.ErrorIs(t, err, ErrNoBalance)

	// Negatif bakiye de tasfiye edilemez.
	addProduction(t, db, w.ID, 5, "1")
	addAdvance(t, db, w.ID, "20")
	_, err = SettleWorker(db, w.ID)
	assert.ErrorIs(t, err, ErrNoBalance)
}

func TestSettleWorkerNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := SettleWorker(db, 42)
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestSettleWorkerInsufficientCash(t *testing.T) {
	// Kasada 5 varken 6'lık bakiye tasfiye edilemez; makbuz da yazılmaz,
	// hiçbir kayıt kapanmaz.
	db := setupTestDB(t)
	w := createWorker(t, db, "Samira")

	addProduction(t, db, w.ID, 50, "0.2")
	addAdvance(t, db, w.ID, "4")
	addCash(t, db, "5")

	_, err := SettleWorker(db, w.ID)
	assert.ErrorIs(t, err, ErrInsufficientCash)

	var receipts int64
	require.NoError(t, db.Model(&models.SalaryPayment{}).Count(&receipts).Error)
	assert.Zero(t, receipts)

	openProd, openAdv := countOpenRecords(t, db, w.ID)
	assert.EqualValues(t, 1, openProd)
	assert.EqualValues(t, 1, openAdv)

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "6.0", balance.StringFixed(1))
}

func TestPartialSalaryLeavesRecordsOpen(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 50, "1")
	addAdvance(t, db, w.ID, "10")
	addCash(t, db, "100")

	payment, err := PayPartialSalary(db, w.ID, decimal.RequireFromString("15"))
	require.NoError(t, err)
	assert.Equal(t, "15.0", payment.Amount.StringFixed(1))

	// Kısmi ödeme makbuz yazar ama hiçbir kaydı kapatmaz.
	openProd, openAdv := countOpenRecords(t, db, w.ID)
	assert.EqualValues(t, 1, openProd)
	assert.EqualValues(t, 1, openAdv)

	// Bakiye türetmesi değişmez; kasa ise 15 azalır.
	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("40")))

	cash, err := TotalCash(db)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("85")))
}

func TestPartialSalaryAtBalanceActsAsSettlement(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 10, "2")
	addCash(t, db, "100")

	payment, err := PayPartialSalary(db, w.ID, decimal.RequireFromString("20"))
	require.NoError(t, err)
	assert.Equal(t, "Dönem tasfiyesi", payment.PeriodFrom)

	openProd, openAdv := countOpenRecords(t, db, w.ID)
	assert.Zero(t, openProd)
	assert.Zero(t, openAdv)
}

func TestPartialSalaryInsufficientCash(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 50, "1")
	addCash(t, db, "5")

	_, err := PayPartialSalary(db, w.ID, decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, ErrInsufficientCash)

	var receipts int64
	require.NoError(t, db.Model(&models.SalaryPayment{}).Count(&receipts).Error)
	assert.Zero(t, receipts)
}
