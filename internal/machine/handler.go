package machine

import (
	"fmt"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/ledger"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateMachineRequest struct {
	Name               string          `json:"name"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
}

type PayInstallmentRequest struct {
	// Boş bırakılırsa aylık taksit tutarı kullanılır.
	Amount decimal.Decimal `json:"amount"`
}

type MachineResponse struct {
	ID                 uint            `json:"id"`
	Name               string          `json:"name"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	RemainingDebt      decimal.Decimal `json:"remaining_debt"`
}

func toResponse(m models.Machine) MachineResponse {
	return MachineResponse{
		ID:                 m.ID,
		Name:               m.Name,
		TotalPrice:         m.TotalPrice,
		MonthlyInstallment: m.MonthlyInstallment,
		PaidAmount:         m.PaidAmount,
		RemainingDebt:      m.TotalPrice.Sub(m.PaidAmount),
	}
}

// POST /api/machines
func CreateMachineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMachineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		if body.TotalPrice.Sign() <= 0 || body.MonthlyInstallment.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_price ve monthly_installment zorunlu ve > 0 olmalı")
		}

		m := models.Machine{
			Name:               body.Name,
			TotalPrice:         body.TotalPrice,
			MonthlyInstallment: body.MonthlyInstallment,
			PaidAmount:         decimal.Zero,
		}

		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makine kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(m))
	}
}

// GET /api/machines
func ListMachinesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.Machine
		if err := database.DB.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makineler listelenemedi")
		}

		resp := make([]MachineResponse, 0, len(rows))
		for _, m := range rows {
			resp = append(resp, toResponse(m))
		}
		return c.JSON(resp)
	}
}

// PUT /api/machines/:id
// paid_amount buradan değiştirilemez; sadece taksit ödemesi artırabilir.
func UpdateMachineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var m models.Machine
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Makine bulunamadı")
		}

		var body CreateMachineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		if body.TotalPrice.Sign() <= 0 || body.MonthlyInstallment.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_price ve monthly_installment zorunlu ve > 0 olmalı")
		}
		if body.TotalPrice.LessThan(m.PaidAmount) {
			return fiber.NewError(fiber.StatusBadRequest, "total_price ödenmiş tutarın altına çekilemez")
		}

		m.Name = body.Name
		m.TotalPrice = body.TotalPrice
		m.MonthlyInstallment = body.MonthlyInstallment

		if err := database.DB.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makine güncellenemedi")
		}

		return c.JSON(toResponse(m))
	}
}

// POST /api/machines/:id/pay-installment
// Taksit kasadan çıkar: kasada olmayan para taksite gidemez. Kalan borcu
// aşan tutar kalan borca kırpılır.
func PayInstallmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var m models.Machine
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Makine bulunamadı")
		}

		remaining := m.TotalPrice.Sub(m.PaidAmount)
		if remaining.Sign() <= 0 {
			return fiber.NewError(fiber.StatusConflict, "Makine borcu zaten kapanmış")
		}

		var body PayInstallmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		amount := body.Amount
		if amount.Sign() == 0 {
			amount = m.MonthlyInstallment
		}
		if amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount > 0 olmalı")
		}
		if amount.GreaterThan(remaining) {
			amount = remaining
		}

		cash, err := ledger.TotalCash(database.DB)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
		}
		if amount.GreaterThan(cash) {
			return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu taksit için yetersiz!")
		}

		before := m

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&models.Machine{}).
				Where("id = ?", m.ID).
				Update("paid_amount", gorm.Expr("paid_amount + ?", amount)).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Taksit kaydedilemedi")
		}
		m.PaidAmount = m.PaidAmount.Add(amount)

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "machine",
				EntityID:    m.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Makine taksiti ödendi: %s, %s", m.Name, amount.StringFixed(1)),
				Before:      before,
				After:       m,
			})
		}

		return c.JSON(toResponse(m))
	}
}

// DELETE /api/machines/:id
// Ödeme geçmişi olan makine silinemez: kasa geçmişi bozulur.
func DeleteMachineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var m models.Machine
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Makine bulunamadı")
		}

		if m.PaidAmount.Sign() > 0 {
			return fiber.NewError(fiber.StatusConflict, "Taksit ödemesi yapılmış makine silinemez")
		}

		if err := database.DB.Delete(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Makine silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Makine silindi"})
	}
}
