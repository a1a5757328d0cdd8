package advance

import (
	"fmt"
	"time"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/ledger"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	WorkerID uint            `json:"worker_id"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
	Date     string          `json:"date"`
}

type AdvanceResponse struct {
	ID        uint            `json:"id"`
	WorkerID  uint            `json:"worker_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
	Date      string          `json:"date"`
	IsSettled bool            `json:"is_settled"`
	// Tutar pozitif bakiyeyi aşıyorsa uyarı: işlem yine de kaydedilir,
	// onay sorumluluğu arayüzdedir.
	ExceedsBalance bool `json:"exceeds_balance,omitempty"`
}

// POST /api/advances
// Avans kasadan çıkan nakittir: kasadaki tutarı aşan avans verilemez.
func CreateAdvanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAdvanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.WorkerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "worker_id zorunlu")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", body.WorkerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		cash, err := ledger.TotalCash(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
		}
		if body.Amount.GreaterThan(cash) {
			return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu avans için yetersiz!")
		}

		balance, err := ledger.WorkerBalance(database.DB, body.WorkerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiye hesaplanamadı")
		}
		exceeds := balance.Sign() > 0 && body.Amount.GreaterThan(balance)

		d := time.Now()
		if body.Date != "" {
			d, err = time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
		}

		adv := models.Advance{
			WorkerID:  body.WorkerID,
			Amount:    body.Amount,
			Note:      body.Note,
			Date:      d,
			IsSettled: false,
		}

		if err := database.DB.Create(&adv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Avans kaydedilemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "advance",
				EntityID:    adv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Avans verildi: %s, %s", worker.FullName, adv.Amount.StringFixed(1)),
				After:       adv,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(AdvanceResponse{
			ID:             adv.ID,
			WorkerID:       adv.WorkerID,
			Amount:         adv.Amount,
			Note:           adv.Note,
			Date:           adv.Date.Format("2006-01-02"),
			IsSettled:      adv.IsSettled,
			ExceedsBalance: exceeds,
		})
	}
}

// GET /api/advances?worker_id=...&open=true
func ListAdvancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Advance{})

		if widStr := c.Query("worker_id"); widStr != "" {
			var wid uint
			if _, err := fmt.Sscan(widStr, &wid); err != nil || wid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "worker_id geçersiz")
			}
			dbq = dbq.Where("worker_id = ?", wid)
		}

		if c.Query("open") == "true" {
			dbq = dbq.Where("is_settled = ?", false)
		}

		var rows []models.Advance
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Avanslar listelenemedi")
		}

		resp := make([]AdvanceResponse, 0, len(rows))
		for _, a := range rows {
			resp = append(resp, AdvanceResponse{
				ID:        a.ID,
				WorkerID:  a.WorkerID,
				Amount:    a.Amount,
				Note:      a.Note,
				Date:      a.Date.Format("2006-01-02"),
				IsSettled: a.IsSettled,
			})
		}
		return c.JSON(resp)
	}
}
