package ledger

import (
	"testing"
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func createWorker(t *testing.T, db *gorm.DB, name string) models.Worker {
	t.Helper()
	w := models.Worker{FullName: name}
	require.NoError(t, db.Create(&w).Error)
	return w
}

func addProduction(t *testing.T, db *gorm.DB, workerID uint, qty float64, rate string) models.ProductionRecord {
	t.Helper()
	r := models.ProductionRecord{
		WorkerID:   &workerID,
		TaskName:   "yaka dikimi",
		Quantity:   qty,
		WorkerRate: decimal.RequireFromString(rate),
		RecordedAt: time.Now(),
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func addAdvance(t *testing.T, db *gorm.DB, workerID uint, amount string) models.Advance {
	t.Helper()
	a := models.Advance{
		WorkerID: workerID,
		Amount:   decimal.RequireFromString(amount),
		Date:     time.Now(),
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

// Kasaya nakit koymanın en kısa yolu: tahsilat görmüş bir sipariş.
func addCash(t *testing.T, db *gorm.DB, amount string) {
	t.Helper()
	o := models.SupplierOrder{
		SupplierName: "Atlas Tekstil",
		ItemName:     "gömlek",
		TotalPieces:  100,
		RatePerPiece: decimal.RequireFromString("2"),
		Status:       models.OrderStatusActive,
		TotalPaid:    decimal.RequireFromString(amount),
	}
	require.NoError(t, db.Create(&o).Error)
}

func TestWorkerBalanceArithmetic(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 30, "0.5")
	addProduction(t, db, w.ID, 20, "1.25")
	addAdvance(t, db, w.ID, "10")

	earned, err := WorkerEarned(db, w.ID)
	require.NoError(t, err)
	assert.True(t, earned.Equal(decimal.RequireFromString("40")), "hakediş 30*0.5 + 20*1.25 = 40 olmalı, %s bulundu", earned)

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("30")))
}

func TestWorkerBalanceSamira(t *testing.T) {
	// 50 adet x 0.2 hakediş, 4 avans: bakiye tam 6.0 çıkmalı.
	db := setupTestDB(t)
	w := createWorker(t, db, "Samira")

	addProduction(t, db, w.ID, 50, "0.2")
	addAdvance(t, db, w.ID, "4")

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "6.0", balance.StringFixed(1))
}

func TestWorkerBalanceCanGoNegative(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Leyla")

	addProduction(t, db, w.ID, 10, "1")
	addAdvance(t, db, w.ID, "25")

	balance, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("-15")))
}

func TestCustomerWorkExcludedFromEarned(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 10, "1")

	// Müşteri işi aynı çalışana bağlı olsa bile hakedişe girmez.
	customer := models.ProductionRecord{
		WorkerID:       &w.ID,
		TaskName:       "fermuar tamiri",
		Quantity:       1,
		WorkerRate:     decimal.RequireFromString("99"),
		SupplierRate:   decimal.RequireFromString("15"),
		IsCustomerWork: true,
		RecordedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&customer).Error)

	earned, err := WorkerEarned(db, w.ID)
	require.NoError(t, err)
	assert.True(t, earned.Equal(decimal.RequireFromString("10")))
}

func TestPaidRecordsExcludedFromEarned(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 10, "1")
	paid := addProduction(t, db, w.ID, 40, "2")
	require.NoError(t, db.Model(&paid).Update("is_paid", true).Error)

	earned, err := WorkerEarned(db, w.ID)
	require.NoError(t, err)
	assert.True(t, earned.Equal(decimal.RequireFromString("10")))
}

func TestBalanceOfUnknownWorkerIsZero(t *testing.T) {
	db := setupTestDB(t)

	balance, err := WorkerBalance(db, 999)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestBalanceDerivationIsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	addProduction(t, db, w.ID, 33, "0.7")
	addAdvance(t, db, w.ID, "5.5")

	first, err := WorkerBalance(db, w.ID)
	require.NoError(t, err)

	// Araya yazma girmeden tekrar hesaplamak aynı sonucu vermeli.
	for i := 0; i < 5; i++ {
		again, err := WorkerBalance(db, w.ID)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestTotalCashFormula(t *testing.T) {
	db := setupTestDB(t)
	w := createWorker(t, db, "Hanan")

	// Girişler: 100 tedarikçi tahsilatı + 15 müşteri işi
	addCash(t, db, "100")
	require.NoError(t, db.Create(&models.ProductionRecord{
		TaskName:       "pantolon paçası",
		Quantity:       1,
		SupplierRate:   decimal.RequireFromString("15"),
		IsCustomerWork: true,
		RecordedAt:     time.Now(),
	}).Error)

	// Çıkışlar: 20 gider + 30 maaş + 10 çekim + 25 makine taksiti
	require.NoError(t, db.Create(&models.Expense{
		Category: "Elektrik", Amount: decimal.RequireFromString("20"), Date: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.SalaryPayment{
		WorkerID: w.ID, Amount: decimal.RequireFromString("30"), Date: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.Withdrawal{
		Amount: decimal.RequireFromString("10"), Date: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&models.Machine{
		Name:               "Overlok",
		TotalPrice:         decimal.RequireFromString("500"),
		MonthlyInstallment: decimal.RequireFromString("25"),
		PaidAmount:         decimal.RequireFromString("25"),
	}).Error)

	cash, err := TotalCash(db)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.RequireFromString("30")), "kasa (100+15)-(20+30+10+25)=30 olmalı, %s bulundu", cash)

	bd, err := Breakdown(db)
	require.NoError(t, err)
	assert.True(t, bd.SupplierIncome.Equal(decimal.RequireFromString("100")))
	assert.True(t, bd.CustomerIncome.Equal(decimal.RequireFromString("15")))
	assert.True(t, bd.Expenses.Equal(decimal.RequireFromString("20")))
	assert.True(t, bd.Salaries.Equal(decimal.RequireFromString("30")))
	assert.True(t, bd.Withdrawals.Equal(decimal.RequireFromString("10")))
	assert.True(t, bd.MachinePayments.Equal(decimal.RequireFromString("25")))
}
