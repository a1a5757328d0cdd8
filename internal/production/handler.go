package production

import (
	"fmt"
	"time"

	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateProductionRecordRequest struct {
	WorkerID     *uint           `json:"worker_id"`
	OrderID      *uint           `json:"order_id"`
	TaskName     string          `json:"task_name"`
	Quantity     float64         `json:"quantity"`
	WorkerRate   decimal.Decimal `json:"worker_rate"`
	SupplierRate decimal.Decimal `json:"supplier_rate"`
	Date         string          `json:"date"` // "2025-12-09", boşsa bugün
}

type CreateCustomerWorkRequest struct {
	TaskName string          `json:"task_name"`
	Amount   decimal.Decimal `json:"amount"` // doğrudan kasaya giren tutar
	Date     string          `json:"date"`
}

type ProductionRecordResponse struct {
	ID             uint            `json:"id"`
	WorkerID       *uint           `json:"worker_id,omitempty"`
	OrderID        *uint           `json:"order_id,omitempty"`
	TaskName       string          `json:"task_name"`
	Quantity       float64         `json:"quantity"`
	WorkerRate     decimal.Decimal `json:"worker_rate"`
	IsCustomerWork bool            `json:"is_customer_work"`
	IsPaid         bool            `json:"is_paid"`
	RecordedAt     string          `json:"recorded_at"`
	SupplierRate   decimal.Decimal `json:"supplier_rate"`
	LineTotal      decimal.Decimal `json:"line_total"` // quantity x worker_rate
}

func toResponse(r models.ProductionRecord) ProductionRecordResponse {
	return ProductionRecordResponse{
		ID:             r.ID,
		WorkerID:       r.WorkerID,
		OrderID:        r.OrderID,
		TaskName:       r.TaskName,
		Quantity:       r.Quantity,
		WorkerRate:     r.WorkerRate,
		IsCustomerWork: r.IsCustomerWork,
		IsPaid:         r.IsPaid,
		RecordedAt:     r.RecordedAt.Format("2006-01-02"),
		SupplierRate:   r.SupplierRate,
		LineTotal:      r.WorkerRate.Mul(decimal.NewFromFloat(r.Quantity)),
	}
}

func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse("2006-01-02", s)
}

// -------------------------
// Üretim kayıtları (işçi hakedişi)
// -------------------------

// POST /api/production-records
// is_paid her zaman false başlar; yalnızca tasfiye kapatabilir.
func CreateProductionRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductionRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.WorkerID == nil || *body.WorkerID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "worker_id zorunlu")
		}
		if body.TaskName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "task_name zorunlu")
		}
		if body.Quantity < 0 || body.WorkerRate.Sign() < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity ve worker_rate negatif olamaz")
		}

		var worker models.Worker
		if err := database.DB.First(&worker, "id = ?", *body.WorkerID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çalışan bulunamadı")
		}

		if body.OrderID != nil && *body.OrderID != 0 {
			var order models.SupplierOrder
			if err := database.DB.First(&order, "id = ?", *body.OrderID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
			}
		}

		d, err := parseDateOrToday(body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		record := models.ProductionRecord{
			WorkerID:       body.WorkerID,
			OrderID:        body.OrderID,
			TaskName:       body.TaskName,
			Quantity:       body.Quantity,
			WorkerRate:     body.WorkerRate,
			SupplierRate:   body.SupplierRate,
			IsCustomerWork: false,
			IsPaid:         false,
			RecordedAt:     d,
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Üretim kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(record))
	}
}

// POST /api/customer-work
// Müşteri işi: işçi hakedişine girmeyen, doğrudan nakit gelir.
func CreateCustomerWorkHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerWorkRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.TaskName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "task_name zorunlu")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		d, err := parseDateOrToday(body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}

		record := models.ProductionRecord{
			TaskName:       body.TaskName,
			Quantity:       1,
			WorkerRate:     decimal.Zero,
			SupplierRate:   body.Amount,
			IsCustomerWork: true,
			IsPaid:         false,
			RecordedAt:     d,
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri işi kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(record))
	}
}

// GET /api/production-records?worker_id=...&customer_work=true|false&open=true
func ListProductionRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ProductionRecord{})

		if widStr := c.Query("worker_id"); widStr != "" {
			var wid uint
			if _, err := fmt.Sscan(widStr, &wid); err != nil || wid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "worker_id geçersiz")
			}
			dbq = dbq.Where("worker_id = ?", wid)
		}

		switch c.Query("customer_work") {
		case "":
		case "true":
			dbq = dbq.Where("is_customer_work = ?", true)
		case "false":
			dbq = dbq.Where("is_customer_work = ?", false)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "customer_work true/false olmalı")
		}

		if c.Query("open") == "true" {
			dbq = dbq.Where("is_paid = ?", false)
		}

		var rows []models.ProductionRecord
		if err := dbq.Order("recorded_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		resp := make([]ProductionRecordResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, toResponse(r))
		}
		return c.JSON(resp)
	}
}

// PUT /api/production-records/:id
// is_paid alanına buradan dokunulamaz; ödenmiş kayıt artık düzenlenemez.
func UpdateProductionRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var record models.ProductionRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
		}
		if record.IsPaid {
			return fiber.NewError(fiber.StatusConflict, "Ödenmiş kayıt düzenlenemez")
		}

		var body CreateProductionRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.TaskName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "task_name zorunlu")
		}
		if body.Quantity < 0 || body.WorkerRate.Sign() < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity ve worker_rate negatif olamaz")
		}

		record.TaskName = body.TaskName
		record.Quantity = body.Quantity
		record.WorkerRate = body.WorkerRate
		record.SupplierRate = body.SupplierRate
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			record.RecordedAt = d
		}

		if err := database.DB.Save(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt güncellenemedi")
		}

		return c.JSON(toResponse(record))
	}
}

// DELETE /api/production-records/:id
func DeleteProductionRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var record models.ProductionRecord
		if err := database.DB.First(&record, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kayıt bulunamadı")
		}
		if record.IsPaid {
			return fiber.NewError(fiber.StatusConflict, "Ödenmiş kayıt silinemez")
		}

		if err := database.DB.Delete(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıt silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Kayıt silindi"})
	}
}
