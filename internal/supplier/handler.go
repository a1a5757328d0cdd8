package supplier

import (
	"fmt"
	"time"

	"atolye-backend/internal/audit"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateSupplierOrderRequest struct {
	SupplierName string          `json:"supplier_name"`
	ItemName     string          `json:"item_name"`
	TotalPieces  float64         `json:"total_pieces"`
	RatePerPiece decimal.Decimal `json:"rate_per_piece"`
}

type UpdateSupplierOrderRequest struct {
	SupplierName string                     `json:"supplier_name"`
	ItemName     string                     `json:"item_name"`
	TotalPieces  float64                    `json:"total_pieces"`
	RatePerPiece decimal.Decimal            `json:"rate_per_piece"`
	Status       models.SupplierOrderStatus `json:"status"`
}

type SupplierOrderResponse struct {
	ID           uint                       `json:"id"`
	SupplierName string                     `json:"supplier_name"`
	ItemName     string                     `json:"item_name"`
	TotalPieces  float64                    `json:"total_pieces"`
	RatePerPiece decimal.Decimal            `json:"rate_per_piece"`
	Status       models.SupplierOrderStatus `json:"status"`
	TotalValue   decimal.Decimal            `json:"total_value"` // adet x parça fiyatı
	TotalPaid    decimal.Decimal            `json:"total_paid"`
	RemainingDue decimal.Decimal            `json:"remaining_due"`
	CreatedAt    string                     `json:"created_at"`
}

type CreateSupplierPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
	Date   string          `json:"date"`
}

type SupplierPaymentResponse struct {
	ID      uint            `json:"id"`
	OrderID uint            `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
	Date    string          `json:"date"`
	Note    string          `json:"note"`
}

type SupplierStatementResponse struct {
	SupplierName string                    `json:"supplier_name"`
	Orders       []SupplierOrderResponse   `json:"orders"`
	Payments     []SupplierPaymentResponse `json:"payments"`
	TotalValue   decimal.Decimal           `json:"total_value"`
	TotalPaid    decimal.Decimal           `json:"total_paid"`
	RemainingDue decimal.Decimal           `json:"remaining_due"`
}

func toOrderResponse(o models.SupplierOrder) SupplierOrderResponse {
	totalValue := o.RatePerPiece.Mul(decimal.NewFromFloat(o.TotalPieces))
	return SupplierOrderResponse{
		ID:           o.ID,
		SupplierName: o.SupplierName,
		ItemName:     o.ItemName,
		TotalPieces:  o.TotalPieces,
		RatePerPiece: o.RatePerPiece,
		Status:       o.Status,
		TotalValue:   totalValue,
		TotalPaid:    o.TotalPaid,
		RemainingDue: totalValue.Sub(o.TotalPaid),
		CreatedAt:    o.CreatedAt.Format("2006-01-02"),
	}
}

func toPaymentResponse(p models.SupplierPayment) SupplierPaymentResponse {
	return SupplierPaymentResponse{
		ID:      p.ID,
		OrderID: p.OrderID,
		Amount:  p.Amount,
		Date:    p.Date.Format("2006-01-02"),
		Note:    p.Note,
	}
}

// -------------------------
// Sipariş CRUD
// -------------------------

// POST /api/supplier-orders
func CreateSupplierOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.SupplierName == "" || body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_name ve item_name zorunlu")
		}
		if body.TotalPieces <= 0 || body.RatePerPiece.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_pieces ve rate_per_piece zorunlu ve > 0 olmalı")
		}

		order := models.SupplierOrder{
			SupplierName: body.SupplierName,
			ItemName:     body.ItemName,
			TotalPieces:  body.TotalPieces,
			RatePerPiece: body.RatePerPiece,
			Status:       models.OrderStatusActive,
			TotalPaid:    decimal.Zero,
		}

		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
	}
}

// GET /api/supplier-orders?supplier_name=...&status=active
func ListSupplierOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SupplierOrder{})

		if name := c.Query("supplier_name"); name != "" {
			dbq = dbq.Where("supplier_name = ?", name)
		}
		if status := c.Query("status"); status != "" {
			if status != string(models.OrderStatusActive) && status != string(models.OrderStatusCompleted) {
				return fiber.NewError(fiber.StatusBadRequest, "status active/completed olmalı")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var rows []models.SupplierOrder
		if err := dbq.Order("created_at desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		resp := make([]SupplierOrderResponse, 0, len(rows))
		for _, o := range rows {
			resp = append(resp, toOrderResponse(o))
		}
		return c.JSON(resp)
	}
}

// PUT /api/supplier-orders/:id
// total_paid buradan değiştirilemez; sadece ödeme kaydı artırabilir.
func UpdateSupplierOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var order models.SupplierOrder
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		var body UpdateSupplierOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.SupplierName == "" || body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_name ve item_name zorunlu")
		}
		if body.TotalPieces <= 0 || body.RatePerPiece.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "total_pieces ve rate_per_piece zorunlu ve > 0 olmalı")
		}
		if body.Status != models.OrderStatusActive && body.Status != models.OrderStatusCompleted {
			return fiber.NewError(fiber.StatusBadRequest, "status active/completed olmalı")
		}

		order.SupplierName = body.SupplierName
		order.ItemName = body.ItemName
		order.TotalPieces = body.TotalPieces
		order.RatePerPiece = body.RatePerPiece
		order.Status = body.Status

		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş güncellenemedi")
		}

		return c.JSON(toOrderResponse(order))
	}
}

// DELETE /api/supplier-orders/:id
// Tahsilat görmüş sipariş silinemez: kasa geçmişi bozulur.
func DeleteSupplierOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var order models.SupplierOrder
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		if order.TotalPaid.Sign() > 0 {
			return fiber.NewError(fiber.StatusConflict, "Tahsilat yapılmış sipariş silinemez")
		}

		if err := database.DB.Delete(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Sipariş silindi"})
	}
}

// -------------------------
// Tahsilatlar
// -------------------------

// POST /api/supplier-orders/:id/payments
// Ödeme kaydı + total_paid artışı tek transaction: biri olmadan diğeri kalamaz.
func RecordSupplierPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var body CreateSupplierPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Amount.Sign() <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount zorunlu ve > 0 olmalı")
		}

		var order models.SupplierOrder
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}

		d := time.Now()
		if body.Date != "" {
			var err error
			d, err = time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
		}

		note := body.Note
		if note == "" {
			note = "Hesaptan dilim"
		}

		payment := models.SupplierPayment{
			OrderID: order.ID,
			Amount:  body.Amount,
			Date:    d,
			Note:    note,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			return tx.Model(&models.SupplierOrder{}).
				Where("id = ?", order.ID).
				Update("total_paid", gorm.Expr("total_paid + ?", body.Amount)).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilat kaydedilemedi")
		}

		if userID, userName, uerr := audit.GetUserInfo(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier_payment",
				EntityID:    payment.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Tedarikçi tahsilatı: %s - %s", order.SupplierName, payment.Amount.StringFixed(1)),
				After:       payment,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toPaymentResponse(payment))
	}
}

// GET /api/supplier-payments?order_id=...
func ListSupplierPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SupplierPayment{})

		if oidStr := c.Query("order_id"); oidStr != "" {
			var oid uint
			if _, err := fmt.Sscan(oidStr, &oid); err != nil || oid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "order_id geçersiz")
			}
			dbq = dbq.Where("order_id = ?", oid)
		}

		var rows []models.SupplierPayment
		if err := dbq.Order("date desc, id desc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilatlar listelenemedi")
		}

		resp := make([]SupplierPaymentResponse, 0, len(rows))
		for _, p := range rows {
			resp = append(resp, toPaymentResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/suppliers/:name/statement
// Tedarikçi bazında birleşik ekstre: tüm siparişler, tahsilatlar, kalan alacak.
func SupplierStatementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		var orders []models.SupplierOrder
		if err := database.DB.
			Where("supplier_name = ?", name).
			Order("created_at desc, id desc").
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler yüklenemedi")
		}
		if len(orders) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Bu isimde tedarikçi siparişi yok")
		}

		orderIDs := make([]uint, 0, len(orders))
		for _, o := range orders {
			orderIDs = append(orderIDs, o.ID)
		}

		var payments []models.SupplierPayment
		if err := database.DB.
			Where("order_id IN ?", orderIDs).
			Order("date desc, id desc").
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tahsilatlar yüklenemedi")
		}

		resp := SupplierStatementResponse{
			SupplierName: name,
			Orders:       make([]SupplierOrderResponse, 0, len(orders)),
			Payments:     make([]SupplierPaymentResponse, 0, len(payments)),
			TotalValue:   decimal.Zero,
			TotalPaid:    decimal.Zero,
		}

		for _, o := range orders {
			or := toOrderResponse(o)
			resp.Orders = append(resp.Orders, or)
			resp.TotalValue = resp.TotalValue.Add(or.TotalValue)
			resp.TotalPaid = resp.TotalPaid.Add(o.TotalPaid)
		}
		for _, p := range payments {
			resp.Payments = append(resp.Payments, toPaymentResponse(p))
		}
		resp.RemainingDue = resp.TotalValue.Sub(resp.TotalPaid)

		return c.JSON(resp)
	}
}
