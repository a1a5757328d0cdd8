package expense

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

type CreateExpenseRequest struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type ExpenseResponse struct {
	ID          uint            `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func toResponse(e models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
	}
}

// POST /api/expenses
// Gider kasadan düşer: kasadaki nakdi aşan gider kaydedilemez.
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category zorunlu")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		cash, err := ledger.TotalCash(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
		}
		if body.Amount.GreaterThan(cash) {
			return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu gider için yetersiz!")
		}

		d := time.Now()
		if body.Date != "" {
			d, err = time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
		}

		e := models.Expense{
			Category:    body.Category,
			Amount:      body.Amount,
			Description: body.Description,
			Date:        d,
		}

		if err := database.DB.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    e.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Gider eklendi: %s, %s", e.Category, e.Amount.StringFixed(1)),
				After:       e,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(e))
	}
}

// GET /api/expenses?category=...&from=...&to=...
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Expense{})

		if cat := c.Query("category"); cat != "" {
			dbq = dbq.Where("category = ?", cat)
		}
		if from := c.Query("from"); from != "" {
			d, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date >= ?", d)
		}
		if to := c.Query("to"); to != "" {
			d, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to formatı 'YYYY-MM-DD' olmalı")
			}
			dbq = dbq.Where("date <= ?", d)
		}

		var rows []models.Expense
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, e := range rows {
			resp = append(resp, toResponse(e))
		}
		return c.JSON(resp)
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var e models.Expense
		if err := database.DB.First(&e, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category zorunlu")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		before := e

		e.Category = body.Category
		e.Amount = body.Amount
		e.Description = body.Description
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			e.Date = d
		}

		if err := database.DB.Save(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    e.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Gider güncellendi: %s, %s", e.Category, e.Amount.StringFixed(1)),
				Before:      before,
				After:       e,
			})
		}

		return c.JSON(toResponse(e))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var e models.Expense
		if err := database.DB.First(&e, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := database.DB.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "expense",
				EntityID:    e.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Gider silindi: %s, %s", e.Category, e.Amount.StringFixed(1)),
				Before:      e,
			})
		}

		return c.JSON(fiber.Map{"message": "Gider silindi"})
	}
}
