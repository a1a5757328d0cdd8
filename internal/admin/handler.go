package admin

import (
	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ResetRequest struct {
	Password string `json:"password"`
}

// POST /api/system/reset
// Tüm defter kayıtlarını geri dönüşsüz siler; kullanıcı hesabı ve denetim
// kaydı kalır. Şifre doğrulanmadan çalışmaz.
func ResetSystemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "password zorunlu")
		}

		userID, userName, err := audit.GetUserInfo(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Şifre hatalı, sıfırlama yapılmadı")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			tables := []any{
				&models.ProductionRecord{},
				&models.Advance{},
				&models.SalaryPayment{},
				&models.SupplierPayment{},
				&models.SupplierOrder{},
				&models.Expense{},
				&models.Machine{},
				&models.Withdrawal{},
				&models.Worker{},
			}
			for _, t := range tables {
				if err := tx.Where("1 = 1").Delete(t).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sıfırlama tamamlanamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "system",
			Action:      models.AuditActionReset,
			Description: "Tüm defter kayıtları sıfırlandı",
		})

		return c.JSON(fiber.Map{"message": "Sistem sıfırlandı"})
	}
}
