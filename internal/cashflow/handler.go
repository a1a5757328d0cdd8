package cashflow

import (
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/ledger"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CashSummaryResponse struct {
	TotalCash decimal.Decimal      `json:"total_cash"`
	Breakdown ledger.CashBreakdown `json:"breakdown"`
}

type CashChartPoint struct {
	Date    string          `json:"date"`
	CashIn  decimal.Decimal `json:"cash_in"`
	CashOut decimal.Decimal `json:"cash_out"`
	Net     decimal.Decimal `json:"net"`
}

// GET /api/cash/summary
// Kasa hiçbir yerde saklanmaz, her seferinde ham kayıtlardan türetilir.
func CashSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		breakdown, err := ledger.Breakdown(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
		}

		return c.JSON(CashSummaryResponse{
			TotalCash: breakdown.Total,
			Breakdown: *breakdown,
		})
	}
}

// GET /api/cash/chart?days=30
// Günlük nakit giriş/çıkış serisi. Makine taksitleri tarihli kayıt
// tutmadığından seriye girmez, yalnızca toplam kasayı etkiler.
func CashChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 || days > 365 {
			return fiber.NewError(fiber.StatusBadRequest, "days geçersiz (1-365)")
		}

		now := time.Now()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		start := end.AddDate(0, 0, -(days - 1))

		inByDay := make(map[string]decimal.Decimal)
		outByDay := make(map[string]decimal.Decimal)

		addTo := func(m map[string]decimal.Decimal, t time.Time, amount decimal.Decimal) {
			key := t.Format("2006-01-02")
			m[key] = m[key].Add(amount)
		}

		var supplierPayments []models.SupplierPayment
		if err := database.DB.Where("date >= ?", start).Find(&supplierPayments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilatlar yüklenemedi")
		}
		for _, p := range supplierPayments {
			addTo(inByDay, p.Date, p.Amount)
		}

		var customerWork []models.ProductionRecord
		if err := database.DB.
			Where("is_customer_work = ? AND recorded_at >= ?", true, start).
			Find(&customerWork).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri işleri yüklenemedi")
		}
		for _, r := range customerWork {
			addTo(inByDay, r.RecordedAt, r.SupplierRate)
		}

		var expenses []models.Expense
		if err := database.DB.Where("date >= ?", start).Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler yüklenemedi")
		}
		for _, e := range expenses {
			addTo(outByDay, e.Date, e.Amount)
		}

		var salaries []models.SalaryPayment
		if err := database.DB.Where("date >= ?", start).Find(&salaries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Maaş ödemeleri yüklenemedi")
		}
		for _, s := range salaries {
			addTo(outByDay, s.Date, s.Amount)
		}

		var withdrawals []models.Withdrawal
		if err := database.DB.Where("date >= ?", start).Find(&withdrawals).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çekimler yüklenemedi")
		}
		for _, w := range withdrawals {
			addTo(outByDay, w.Date, w.Amount)
		}

		points := make([]CashChartPoint, 0, days)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			in := inByDay[key]
			out := outByDay[key]
			points = append(points, CashChartPoint{
				Date:    key,
				CashIn:  in,
				CashOut: out,
				Net:     in.Sub(out),
			})
		}

		return c.JSON(points)
	}
}
