package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atolye-backend/internal/auth"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubExtractor - testlerde sabit sonuç döndüren çıkarıcı.
type stubExtractor struct {
	result *ExtractResult
}

func (s *stubExtractor) Extract(ctx context.Context, text string) (*ExtractResult, error) {
	return s.result, nil
}

func setupApp(t *testing.T, extractor Extractor) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	owner := models.User{Name: "Patron", Email: "patron@atolye.local", PasswordHash: "x"}
	require.NoError(t, db.Create(&owner).Error)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, owner.ID)
		return c.Next()
	})
	app.Post("/api/ingest", IngestHandler(extractor))

	return app
}

func createWorker(t *testing.T, name string) models.Worker {
	t.Helper()
	w := models.Worker{FullName: name}
	require.NoError(t, database.DB.Create(&w).Error)
	return w
}

func addCash(t *testing.T, amount string) {
	t.Helper()
	require.NoError(t, database.DB.Create(&models.SupplierOrder{
		SupplierName: "Atlas Tekstil",
		ItemName:     "gömlek",
		TotalPieces:  100,
		RatePerPiece: decimal.RequireFromString("2"),
		Status:       models.OrderStatusActive,
		TotalPaid:    decimal.RequireFromString(amount),
	}).Error)
}

func postIngest(t *testing.T, app *fiber.App, body IngestRequest) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/ingest", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestResolveWorkerFuzzyMatch(t *testing.T) {
	setupApp(t, nil)
	createWorker(t, "Samira Khalil")
	createWorker(t, "Hanan")

	// Kısmi isim tam ismi bulur.
	w, err := resolveWorker("samira")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "Samira Khalil", w.FullName)

	// Ters yön: kayıtlı kısa isim, metindeki uzun ifadenin içinde.
	w, err = resolveWorker("Hanan Hanım")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "Hanan", w.FullName)

	w, err = resolveWorker("Meryem")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestIngestProductionWithDefaults(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{
		Type: TypeProduction,
		Data: ExtractData{WorkerName: "samira"},
	}})
	w := createWorker(t, "Samira Khalil")

	resp := postIngest(t, app, IngestRequest{Text: "samira bugün çalıştı"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var record models.ProductionRecord
	require.NoError(t, database.DB.First(&record).Error)
	require.NotNil(t, record.WorkerID)
	assert.Equal(t, w.ID, *record.WorkerID)
	assert.Equal(t, "Belirtilmemiş iş", record.TaskName)
	assert.Zero(t, record.Quantity)
	assert.False(t, record.IsPaid)
	assert.False(t, record.IsCustomerWork)
}

func TestIngestProductionUnknownWorker(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{
		Type: TypeProduction,
		Data: ExtractData{WorkerName: "Meryem", TaskName: "yaka", Quantity: 10, WorkerRate: 0.5},
	}})

	resp := postIngest(t, app, IngestRequest{Text: "Meryem 10 yaka dikti"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var count int64
	require.NoError(t, database.DB.Model(&models.ProductionRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestAdvanceConfirmationFlow(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{
		Type: TypeAdvance,
		Data: ExtractData{WorkerName: "Samira", Amount: 50},
	}})
	w := createWorker(t, "Samira")
	addCash(t, "100")

	// Bakiye 10, istenen avans 50: önce onay istenir, kayıt açılmaz.
	require.NoError(t, database.DB.Create(&models.ProductionRecord{
		WorkerID:   &w.ID,
		TaskName:   "yaka",
		Quantity:   10,
		WorkerRate: decimal.RequireFromString("1"),
		RecordedAt: time.Now(),
	}).Error)

	resp := postIngest(t, app, IngestRequest{Text: "Samira'ya 50 avans"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out IngestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.NeedsConfirmation)

	var count int64
	require.NoError(t, database.DB.Model(&models.Advance{}).Count(&count).Error)
	assert.Zero(t, count)

	// confirm=true ile aynı istek bu kez kaydı açar.
	resp = postIngest(t, app, IngestRequest{Text: "Samira'ya 50 avans", Confirm: true})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.NoError(t, database.DB.Model(&models.Advance{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIngestAdvanceInsufficientCash(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{
		Type: TypeAdvance,
		Data: ExtractData{WorkerName: "Samira", Amount: 50},
	}})
	createWorker(t, "Samira")
	addCash(t, "20")

	resp := postIngest(t, app, IngestRequest{Text: "Samira'ya 50 avans", Confirm: true})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, database.DB.Model(&models.Advance{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIngestExpenseWithDefaults(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{
		Type: TypeExpense,
		Data: ExtractData{Amount: 30, Note: "elektrik faturası"},
	}})
	addCash(t, "100")

	resp := postIngest(t, app, IngestRequest{Text: "elektrik faturası 30"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var e models.Expense
	require.NoError(t, database.DB.First(&e).Error)
	assert.Equal(t, "Genel", e.Category)
	assert.Equal(t, "elektrik faturası", e.Description)
	assert.True(t, e.Amount.Equal(decimal.RequireFromString("30")))
}

func TestIngestUnknownType(t *testing.T) {
	app := setupApp(t, &stubExtractor{result: &ExtractResult{Type: TypeUnknown}})

	resp := postIngest(t, app, IngestRequest{Text: "bugün hava çok güzeldi"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestIngestWithoutExtractor(t *testing.T) {
	app := setupApp(t, nil)

	resp := postIngest(t, app, IngestRequest{Text: "Samira 10 yaka dikti"})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestGeminiExtractorDegradesToUnknown(t *testing.T) {
	// Servis 500 dönerse
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key")
	result, err := g.Extract(context.Background(), "Samira 10 yaka dikti")
	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, result.Type)

	// Servis bozuk JSON dönerse
	srvBad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"bu json değil"}]}}]}`))
	}))
	defer srvBad.Close()

	g = NewGeminiExtractor(srvBad.URL, "test-key")
	result, err = g.Extract(context.Background(), "Samira 10 yaka dikti")
	require.NoError(t, err)
	assert.Equal(t, TypeUnknown, result.Type)
}

func TestGeminiExtractorParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		inner, _ := json.Marshal(ExtractResult{
			Type: TypeProduction,
			Data: ExtractData{WorkerName: "Samira", TaskName: "yaka", Quantity: 10, WorkerRate: 0.5},
		})
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": string(inner)}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	g := NewGeminiExtractor(srv.URL, "test-key")
	result, err := g.Extract(context.Background(), "Samira 10 yaka dikti, tanesi 0.5")
	require.NoError(t, err)
	assert.Equal(t, TypeProduction, result.Type)
	assert.Equal(t, "Samira", result.Data.WorkerName)
	assert.Equal(t, 10.0, result.Data.Quantity)
}
