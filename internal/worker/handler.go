package worker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/ledger"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateWorkerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type WorkerResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type WorkerBalanceResponse struct {
	WorkerID       uint            `json:"worker_id"`
	Earned         decimal.Decimal `json:"earned"`
	Advances       decimal.Decimal `json:"advances"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceDisplay string          `json:"balance_display"` // tek ondalıkla, sadece gösterim için
}

type PartialSalaryRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type SalaryPaymentResponse struct {
	ID         uint            `json:"id"`
	WorkerID   uint            `json:"worker_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	PeriodFrom string          `json:"period_from"`
	PeriodTo   string          `json:"period_to"`
	Details    string          `json:"details"`
}

// Hesap özeti satırı: açık üretim, açık avans veya arşivlenmiş kalem.
type StatementLine struct {
	Kind     string          `json:"kind"` // production | advance | salary_payment
	Date     string          `json:"date"`
	Label    string          `json:"label"`
	Quantity float64         `json:"quantity,omitempty"`
	Rate     decimal.Decimal `json:"rate,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

type WorkerStatementResponse struct {
	Worker   WorkerResponse  `json:"worker"`
	Earned   decimal.Decimal `json:"earned"`
	Advances decimal.Decimal `json:"advances"`
	Balance  decimal.Decimal `json:"balance"`
	Open     []StatementLine `json:"open"`     // tasfiye bekleyen kalemler
	Archived []StatementLine `json:"archived"` // kapanmış dönemlerin kalemleri
}

func toWorkerResponse(w models.Worker) WorkerResponse {
	return WorkerResponse{ID: w.ID, FullName: w.FullName, Phone: w.Phone}
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	idStr := c.Params("id")
	var id uint
	if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
	}
	return id, nil
}

// -------------------------
// Worker CRUD
// -------------------------

// POST /api/workers
func CreateWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWorkerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.FullName = strings.TrimSpace(body.FullName)
		if body.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "full_name zorunlu")
		}

		worker := models.Worker{FullName: body.FullName, Phone: strings.TrimSpace(body.Phone)}
		if err := database.DB.Create(&worker).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışan kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toWorkerResponse(worker))
	}
}

// GET /api/workers
func ListWorkersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var workers []models.Worker
		if err := database.DB.Order("full_name asc").Find(&workers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışanlar listelenemedi")
		}

		resp := make([]WorkerResponse, 0, len(workers))
		for _, w := range workers {
			resp = append(resp, toWorkerResponse(w))
		}
		return c.JSON(resp)
	}
}

// PUT /api/workers/:id
func UpdateWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body CreateWorkerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		body.FullName = strings.TrimSpace(body.FullName)
		if body.FullName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "full_name zorunlu")
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		worker.FullName = body.FullName
		worker.Phone = strings.TrimSpace(body.Phone)
		if err := database.DB.Save(&worker).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışan güncellenemedi")
		}

		return c.JSON(toWorkerResponse(worker))
	}
}

// DELETE /api/workers/:id
// Açık üretim veya açık avans varken silme yasak: önce tasfiye yapılmalı.
// Kapanmış kayıtlar (arşiv) çalışanla birlikte yerinde bırakılır.
func DeleteWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		var openRecords int64
		database.DB.Model(&models.ProductionRecord{}).
			Where("worker_id = ? AND is_paid = ? AND is_customer_work = ?", id, false, false).
			Count(&openRecords)

		var openAdvances int64
		database.DB.Model(&models.Advance{}).
			Where("worker_id = ? AND is_settled = ?", id, false).
			Count(&openAdvances)

		if openRecords > 0 || openAdvances > 0 {
			return fiber.NewError(fiber.StatusConflict, "Çalışanın açık hesabı var, önce tasfiye yapılmalı")
		}

		if err := database.DB.Delete(&worker).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çalışan silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Çalışan silindi"})
	}
}

// -------------------------
// Bakiye ve hesap özeti
// -------------------------

// GET /api/workers/:id/balance
func WorkerBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		earned, err := ledger.WorkerEarned(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hakediş hesaplanamadı")
		}
		advances, err := ledger.WorkerAdvances(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Avanslar hesaplanamadı")
		}
		balance := earned.Sub(advances)

		return c.JSON(WorkerBalanceResponse{
			WorkerID:       id,
			Earned:         earned,
			Advances:       advances,
			Balance:        balance,
			BalanceDisplay: balance.StringFixed(1),
		})
	}
}

// GET /api/workers/:id/statement
// Çalışanın hesap özeti: açık kalemler + kapanmış dönemlerin arşivi.
func WorkerStatementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		var records []models.ProductionRecord
		if err := database.DB.
			Where("worker_id = ? AND is_customer_work = ?", id, false).
			Order("recorded_at desc, id desc").
			Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kayıtları yüklenemedi")
		}

		var advances []models.Advance
		if err := database.DB.
			Where("worker_id = ?", id).
			Order("date desc, id desc").
			Find(&advances).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Avanslar yüklenemedi")
		}

		var payments []models.SalaryPayment
		if err := database.DB.
			Where("worker_id = ?", id).
			Order("date desc, id desc").
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Maaş makbuzları yüklenemedi")
		}

		open := make([]StatementLine, 0)
		archived := make([]StatementLine, 0)

		for _, r := range records {
			line := StatementLine{
				Kind:     "production",
				Date:     r.RecordedAt.Format("2006-01-02"),
				Label:    r.TaskName,
				Quantity: r.Quantity,
				Rate:     r.WorkerRate,
				Amount:   r.WorkerRate.Mul(decimal.NewFromFloat(r.Quantity)),
			}
			if r.IsPaid {
				archived = append(archived, line)
			} else {
				open = append(open, line)
			}
		}

		for _, a := range advances {
			line := StatementLine{
				Kind:   "advance",
				Date:   a.Date.Format("2006-01-02"),
				Label:  "Avans: " + a.Note,
				Amount: a.Amount.Neg(),
			}
			if a.IsSettled {
				archived = append(archived, line)
			} else {
				open = append(open, line)
			}
		}

		for _, p := range payments {
			archived = append(archived, StatementLine{
				Kind:   "salary_payment",
				Date:   p.Date.Format("2006-01-02"),
				Label:  "Tasfiye: " + p.Details,
				Amount: p.Amount.Neg(),
			})
		}

		earned, err := ledger.WorkerEarned(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hakediş hesaplanamadı")
		}
		advTotal, err := ledger.WorkerAdvances(database.DB, id)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Avanslar hesaplanamadı")
		}

		return c.JSON(WorkerStatementResponse{
			Worker:   toWorkerResponse(worker),
			Earned:   earned,
			Advances: advTotal,
			Balance:  earned.Sub(advTotal),
			Open:     open,
			Archived: archived,
		})
	}
}

// -------------------------
// Tasfiye ve maaş ödemeleri
// -------------------------

func ledgerErrToFiber(err error) error {
	switch {
	case errors.Is(err, ledger.ErrWorkerNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
	case errors.Is(err, ledger.ErrNoBalance):
		return fiber.NewError(fiber.StatusBadRequest, "Ödenecek bakiye yok")
	case errors.Is(err, ledger.ErrInsufficientCash):
		return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu ödeme için yetersiz!")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Ödeme kaydedilemedi")
	}
}

// POST /api/workers/:id/settle
// Tam tasfiye: bakiye kadar makbuz + tüm açık kayıtların kapanması, tek transaction.
func SettleWorkerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		payment, err := ledger.SettleWorker(database.DB, id)
		if err != nil {
			return ledgerErrToFiber(err)
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "salary_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionSettle,
				Description: fmt.Sprintf("Tasfiye yapıldı: çalışan #%d, %s", id, payment.Amount.StringFixed(1)),
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSalaryPaymentResponse(*payment))
	}
}

// POST /api/workers/:id/salary-payments
// Kısmi maaş ödemesi: bakiyenin altındaysa hiçbir kayıt kapanmaz, sadece makbuz yazılır.
func PayPartialSalaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body PartialSalaryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		payment, err := ledger.PayPartialSalary(database.DB, id, body.Amount)
		if err != nil {
			return ledgerErrToFiber(err)
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "salary_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Maaş dilimi ödendi: çalışan #%d, %s", id, payment.Amount.StringFixed(1)),
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSalaryPaymentResponse(*payment))
	}
}

// GET /api/salary-payments?worker_id=...&from=...&to=...
func ListSalaryPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SalaryPayment{})

		if widStr := c.Query("worker_id"); widStr != "" {
			var wid uint
			if _, err := fmt.Sscan(widStr, &wid); err != nil || wid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "worker_id geçersiz")
			}
			dbq = dbq.Where("worker_id = ?", wid)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to geçersiz")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		var rows []models.SalaryPayment
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makbuzlar listelenemedi")
		}

		resp := make([]SalaryPaymentResponse, 0, len(rows))
		for _, p := range rows {
			resp = append(resp, toSalaryPaymentResponse(p))
		}
		return c.JSON(resp)
	}
}

func toSalaryPaymentResponse(p models.SalaryPayment) SalaryPaymentResponse {
	return SalaryPaymentResponse{
		ID:         p.ID,
		WorkerID:   p.WorkerID,
		Amount:     p.Amount,
		Date:       p.Date.Format("2006-01-02"),
		PeriodFrom: p.PeriodFrom,
		PeriodTo:   p.PeriodTo,
		Details:    p.Details,
	}
}
