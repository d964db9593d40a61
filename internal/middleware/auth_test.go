package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-service/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func newAuthedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(middleware.RequireAuth(secret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": middleware.UserID(c)})
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestRequireAuth_NoHeader(t *testing.T) {
	app := newAuthedApp(testSecret)

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	app := newAuthedApp(testSecret)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	app := newAuthedApp(testSecret)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	app := newAuthedApp(testSecret)
	token := signToken(t, "some-other-secret", jwt.MapClaims{"sub": "user-123"})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_MissingSubClaim(t *testing.T) {
	app := newAuthedApp(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"aud": "scene-service"})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuth_ValidTokenSetsUserID(t *testing.T) {
	app := newAuthedApp(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-123"})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-123", body["user"])
}
