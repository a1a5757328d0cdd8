package ingest

import (
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

type IngestRequest struct {
	Text string `json:"text"`
	// Bakiyeyi aşan avanslarda ikinci istek confirm=true ile gelir.
	Confirm bool `json:"confirm"`
}

type IngestResponse struct {
	Type              string `json:"type"`
	NeedsConfirmation bool   `json:"needs_confirmation,omitempty"`
	Message           string `json:"message,omitempty"`
	Record            any    `json:"record,omitempty"`
}

// resolveWorker - isimden çalışan bulur: küçük harfe çekilmiş halde iki
// yönlü substring, ilk eşleşen kazanır.
func resolveWorker(name string) (*models.Worker, error) {
	var workers []models.Worker
	if err := database.DB.Order("id asc").Find(&workers).Error; err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	for i := range workers {
		candidate := strings.ToLower(workers[i].FullName)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &workers[i], nil
		}
	}
	return nil, nil
}

// POST /api/ingest
// Serbest metni yapay zeka servisine gönderir, dönen yapılandırılmış
// sonucu doğrulayıp deftere işler. unknown tipinde hiçbir kayıt açılmaz.
func IngestHandler(extractor Extractor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if extractor == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Akıllı kayıt girişi yapılandırılmamış (AI_API_URL boş)")
		}

		var body IngestRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if strings.TrimSpace(body.Text) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "text zorunlu")
		}

		result, err := extractor.Extract(c.UserContext(), body.Text)
		if err != nil || result == nil {
			result = &ExtractResult{Type: TypeUnknown}
		}

		switch result.Type {
		case TypeProduction:
			return ingestProduction(c, result.Data)
		case TypeAdvance:
			return ingestAdvance(c, result.Data, body.Confirm)
		case TypeExpense:
			return ingestExpense(c, result.Data)
		default:
			return fiber.NewError(fiber.StatusUnprocessableEntity, "Metin anlaşılamadı, kayıt açılmadı")
		}
	}
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func ingestProduction(c *fiber.Ctx, data ExtractData) error {
	worker, err := resolveWorker(data.WorkerName)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Çalışanlar yüklenemedi")
	}
	if worker == nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Çalışan bulunamadı: %q", data.WorkerName))
	}

	taskName := data.TaskName
	if taskName == "" {
		taskName = "Belirtilmemiş iş"
	}
	if data.Quantity < 0 || data.WorkerRate < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity ve worker_rate negatif olamaz")
	}

	record := models.ProductionRecord{
		WorkerID:       &worker.ID,
		TaskName:       taskName,
		Quantity:       data.Quantity,
		WorkerRate:     decimal.NewFromFloat(data.WorkerRate),
		SupplierRate:   decimal.NewFromFloat(data.SupplierRate),
		IsCustomerWork: false,
		IsPaid:         false,
		RecordedAt:     today(),
	}

	if err := database.DB.Create(&record).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Üretim kaydedilemedi")
	}

	if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "production_record",
			EntityID:    record.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Metinden üretim kaydı: %s, %s", worker.FullName, taskName),
			After:       record,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		Type:    TypeProduction,
		Message: fmt.Sprintf("Üretim kaydedildi: %s", worker.FullName),
		Record:  record,
	})
}

func ingestAdvance(c *fiber.Ctx, data ExtractData, confirm bool) error {
	worker, err := resolveWorker(data.WorkerName)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Çalışanlar yüklenemedi")
	}
	if worker == nil {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Çalışan bulunamadı: %q", data.WorkerName))
	}

	amount := decimal.NewFromFloat(data.Amount)
	if amount.Sign() <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Avans tutarı çıkarılamadı")
	}

	cash, err := ledger.TotalCash(database.DB)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
	}
	if amount.GreaterThan(cash) {
		return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu avans için yetersiz!")
	}

	balance, err := ledger.WorkerBalance(database.DB, worker.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Bakiye hesaplanamadı")
	}
	if balance.Sign() > 0 && amount.GreaterThan(balance) && !confirm {
		return c.JSON(IngestResponse{
			Type:              TypeAdvance,
			NeedsConfirmation: true,
			Message: fmt.Sprintf("Avans (%s) çalışanın bakiyesini (%s) aşıyor, onay için confirm=true gönderin",
				amount.StringFixed(1), balance.StringFixed(1)),
		})
	}

	adv := models.Advance{
		WorkerID:  worker.ID,
		Amount:    amount,
		Note:      data.Note,
		Date:      today(),
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
			Description: fmt.Sprintf("Metinden avans: %s, %s", worker.FullName, amount.StringFixed(1)),
			After:       adv,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		Type:    TypeAdvance,
		Message: fmt.Sprintf("Avans kaydedildi: %s", worker.FullName),
		Record:  adv,
	})
}

func ingestExpense(c *fiber.Ctx, data ExtractData) error {
	amount := decimal.NewFromFloat(data.Amount)
	if amount.Sign() <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Gider tutarı çıkarılamadı")
	}

	cash, err := ledger.TotalCash(database.DB)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Kasa hesaplanamadı")
	}
	if amount.GreaterThan(cash) {
		return fiber.NewError(fiber.StatusBadRequest, "Kasadaki nakit bu gider için yetersiz!")
	}

	category := data.Category
	if category == "" {
		category = "Genel"
	}

	e := models.Expense{
		Category:    category,
		Amount:      amount,
		Description: data.Note,
		Date:        today(),
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
			Description: fmt.Sprintf("Metinden gider: %s, %s", category, amount.StringFixed(1)),
			After:       e,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(IngestResponse{
		Type:    TypeExpense,
		Message: "Gider kaydedildi",
		Record:  e,
	})
}
