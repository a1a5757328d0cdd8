package withdrawal

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

type CreateWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
	Date   string          `json:"date"`
}

type WithdrawalResponse struct {
	ID     uint            `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
	Date   string          `json:"date"`
}

// POST /api/withdrawals
// Patron çekimi kasadan çıkar: kasadaki nakdi aşan çekim yapılamaz.
func CreateWithdrawalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWithdrawalRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		cash, err := ledger.TotalCash(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
		}
		if body.Amount.GreaterThan(cash) {
			return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu çekim için yetersiz!")
		}

		d := time.Now()
		if body.Date != "" {
			d, err = time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
		}

		w := models.Withdrawal{
			Amount: body.Amount,
			Note:   body.Note,
			Date:   d,
		}

		if err := database.DB.Create(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çekim kaydedilemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "withdrawal",
				EntityID:    w.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Patron çekimi: %s", w.Amount.StringFixed(1)),
				After:       w,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(WithdrawalResponse{
			ID:     w.ID,
			Amount: w.Amount,
			Note:   w.Note,
			Date:   w.Date.Format("2006-01-02"),
		})
	}
}

// GET /api/withdrawals
func ListWithdrawalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Withdrawal
		if err := database.DB.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çekimler listelenemedi")
		}

		resp := make([]WithdrawalResponse, 0, len(rows))
		for _, w := range rows {
			resp = append(resp, WithdrawalResponse{
				ID:     w.ID,
				Amount: w.Amount,
				Note:   w.Note,
				Date:   w.Date.Format("2006-01-02"),
			})
		}
		return c.JSON(resp)
	}
}
