package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atolye-backend/internal/config"
	"atolye-backend/internal/database"
	"atolye-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret!",
	}
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := testConfig()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Post("/api/auth/register-owner", RegisterOwnerHandler(cfg))
	app.Post("/api/auth/login", LoginHandler(cfg))

	protected := app.Group("")
	protected.Use(JWTMiddleware(cfg))
	protected.Get("/api/auth/me", MeHandler())
	protected.Post("/api/auth/change-password", ChangePasswordHandler())

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := doJSON(t, app, "POST", "/api/auth/register-owner", "", fiber.Map{
		"name":     "Patron",
		"email":    "patron@atolye.local",
		"password": "gizli-sifre",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "patron@atolye.local",
		"password": "gizli-sifre",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestRegisterOwnerOnlyOnce(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register-owner", "", fiber.Map{
		"name": "Patron", "email": "patron@atolye.local", "password": "gizli-sifre",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// İkinci hesap açılamaz: atölye tek kullanıcılı.
	resp = doJSON(t, app, "POST", "/api/auth/register-owner", "", fiber.Map{
		"name": "Davetsiz", "email": "baska@atolye.local", "password": "123456",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPasswordStoredHashed(t *testing.T) {
	app := setupApp(t)
	registerAndLogin(t, app)

	var user models.User
	require.NoError(t, database.DB.First(&user).Error)
	assert.NotEqual(t, "gizli-sifre", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("gizli-sifre")))
}

func TestLoginWrongPassword(t *testing.T) {
	app := setupApp(t)
	registerAndLogin(t, app)

	resp := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email": "patron@atolye.local", "password": "yanlis",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app := setupApp(t)
	registerAndLogin(t, app)

	resp := doJSON(t, app, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app)

	// Mevcut şifre yanlışsa değişiklik reddedilir.
	resp := doJSON(t, app, "POST", "/api/auth/change-password", token, fiber.Map{
		"current_password": "yanlis",
		"new_password":     "yeni-sifre",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Doğru şifreyle geçer, yeni şifreyle giriş yapılabilir.
	resp = doJSON(t, app, "POST", "/api/auth/change-password", token, fiber.Map{
		"current_password": "gizli-sifre",
		"new_password":     "yeni-sifre",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email": "patron@atolye.local", "password": "yeni-sifre",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email": "patron@atolye.local", "password": "gizli-sifre",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestChangePasswordMinLength(t *testing.T) {
	app := setupApp(t)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, "POST", "/api/auth/change-password", token, fiber.Map{
		"current_password": "gizli-sifre",
		"new_password":     "123",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
