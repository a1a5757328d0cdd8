package main

import (
	"log"
	"strings"

	"atolye-backend/internal/admin"
	"atolye-backend/internal/advance"
	"atolye-backend/internal/audit"
	"atolye-backend/internal/auth"
	"atolye-backend/internal/cashflow"
	"atolye-backend/internal/config"
	"atolye-backend/internal/database"
	"atolye-backend/internal/expense"
	"atolye-backend/internal/ingest"
	"atolye-backend/internal/machine"
	"atolye-backend/internal/production"
	"atolye-backend/internal/supplier"
	"atolye-backend/internal/withdrawal"
	"atolye-backend/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// Metinden kayıt çıkarımı; adres tanımlı değilse endpoint 503 döner
	var extractor ingest.Extractor
	if cfg.AIAPIURL != "" {
		extractor = ingest.NewGeminiExtractor(cfg.AIAPIURL, cfg.AIAPIKey)
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-owner", auth.RegisterOwnerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/change-password", auth.ChangePasswordHandler())

	// Çalışanlar ve hakediş
	protected.Post("/workers", worker.CreateWorkerHandler())
	protected.Get("/workers", worker.ListWorkersHandler())
	protected.Put("/workers/:id", worker.UpdateWorkerHandler())
	protected.Delete("/workers/:id", worker.DeleteWorkerHandler())
	protected.Get("/workers/:id/balance", worker.WorkerBalanceHandler())
	protected.Get("/workers/:id/statement", worker.WorkerStatementHandler())
	protected.Post("/workers/:id/settle", worker.SettleWorkerHandler())
	protected.Post("/workers/:id/salary-payments", worker.PayPartialSalaryHandler())
	protected.Get("/salary-payments", worker.ListSalaryPaymentsHandler())

	// Üretim kayıtları ve müşteri işleri
	protected.Post("/production-records", production.CreateProductionRecordHandler())
	protected.Get("/production-records", production.ListProductionRecordsHandler())
	protected.Put("/production-records/:id", production.UpdateProductionRecordHandler())
	protected.Delete("/production-records/:id", production.DeleteProductionRecordHandler())
	protected.Post("/customer-work", production.CreateCustomerWorkHandler())

	// Avanslar
	protected.Post("/advances", advance.CreateAdvanceHandler())
	protected.Get("/advances", advance.ListAdvancesHandler())

	// Tedarikçi siparişleri ve tahsilatlar
	protected.Post("/supplier-orders", supplier.CreateSupplierOrderHandler())
	protected.Get("/supplier-orders", supplier.ListSupplierOrdersHandler())
	protected.Put("/supplier-orders/:id", supplier.UpdateSupplierOrderHandler())
	protected.Delete("/supplier-orders/:id", supplier.DeleteSupplierOrderHandler())
	protected.Post("/supplier-orders/:id/payments", supplier.RecordSupplierPaymentHandler())
	protected.Get("/supplier-payments", supplier.ListSupplierPaymentsHandler())
	protected.Get("/suppliers/:name/statement", supplier.SupplierStatementHandler())

	// Giderler
	protected.Post("/expenses", expense.CreateExpenseHandler())
	protected.Get("/expenses", expense.ListExpensesHandler())
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler())
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Makineler ve taksitler
	protected.Post("/machines", machine.CreateMachineHandler())
	protected.Get("/machines", machine.ListMachinesHandler())
	protected.Put("/machines/:id", machine.UpdateMachineHandler())
	protected.Post("/machines/:id/pay-installment", machine.PayInstallmentHandler())
	protected.Delete("/machines/:id", machine.DeleteMachineHandler())

	// Patron çekimleri
	protected.Post("/withdrawals", withdrawal.CreateWithdrawalHandler())
	protected.Get("/withdrawals", withdrawal.ListWithdrawalsHandler())

	// Kasa
	protected.Get("/cash/summary", cashflow.CashSummaryHandler())
	protected.Get("/cash/chart", cashflow.CashChartHandler())

	// Metinden akıllı kayıt girişi
	protected.Post("/ingest", ingest.IngestHandler(extractor))

	// Sistem sıfırlama
	protected.Post("/system/reset", admin.ResetSystemHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
