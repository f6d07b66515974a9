package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"

	"critique/internal/config"
	"critique/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mailerMock records outgoing mail.
type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	app    *fiber.App
	mailer *mailerMock
}

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		JWTSecret:       "test-secret-with-enough-length-for-hmac",
		JWTIssuer:       "critique-api",
		JWTAudience:     "critique-client",
		JWTTTLHours:     1,
		DefaultPageSize: 10,
		FeatureFlags:    "public_signup=on",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db := setupTestDB(t)
	mailer := &mailerMock{}
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	srv, err := newServer(cfg, db, nil, mailer)
	require.NoError(t, err)
	return &testEnv{t: t, db: db, app: srv.NewApp(), mailer: mailer}
}

// request sends a JSON request and decodes a JSON object response.
func (e *testEnv) request(method, path, token string, body interface{}) (int, map[string]interface{}) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

var codePattern = regexp.MustCompile(`confirmation code is: (\S+)`)

// lastCode returns the newest confirmation code mailed to address.
func (e *testEnv) lastCode(address string) string {
	e.t.Helper()
	for i := len(e.mailer.Calls) - 1; i >= 0; i-- {
		call := e.mailer.Calls[i]
		if call.Arguments.String(1) != address {
			continue
		}
		if m := codePattern.FindStringSubmatch(call.Arguments.String(3)); m != nil {
			return m[1]
		}
	}
	e.t.Fatalf("no confirmation code mailed to %s", address)
	return ""
}

// login signs username up, assigns role and returns a bearer token.
func (e *testEnv) login(username string, role models.Role) string {
	e.t.Helper()
	email := username + "@example.com"

	status, body := e.request(http.MethodPost, "/api/v1/auth/signup", "", fiber.Map{
		"username": username, "email": email,
	})
	require.Equal(e.t, fiber.StatusOK, status, body)

	if role != models.RoleUser {
		require.NoError(e.t, e.db.Model(&models.User{}).
			Where("username = ?", username).Update("role", role).Error)
	}

	status, body = e.request(http.MethodPost, "/api/v1/auth/token", "", fiber.Map{
		"username": username, "confirmation_code": e.lastCode(email),
	})
	require.Equal(e.t, fiber.StatusOK, status, body)
	return body["token"].(string)
}

// seedTitle creates the films category, the drama and comedy genres and one
// title in them, returning the title id.
func (e *testEnv) seedTitle(admin string) int {
	e.t.Helper()
	for _, req := range []struct{ path, name, slug string }{
		{"/api/v1/categories", "Films", "films"},
		{"/api/v1/genres", "Drama", "drama"},
		{"/api/v1/genres", "Comedy", "comedy"},
	} {
		status, body := e.request(http.MethodPost, req.path, admin, fiber.Map{"name": req.name, "slug": req.slug})
		require.Equal(e.t, fiber.StatusCreated, status, body)
	}

	status, body := e.request(http.MethodPost, "/api/v1/titles", admin, fiber.Map{
		"name": "The Apartment", "year": 1960, "description": "Office comedy",
		"category": "films", "genre": []string{"drama", "comedy"},
	})
	require.Equal(e.t, fiber.StatusCreated, status, body)
	return int(body["id"].(float64))
}

// fields returns the field-keyed messages of an error body.
func fields(body map[string]interface{}) map[string]interface{} {
	f, _ := body["fields"].(map[string]interface{})
	return f
}

// requestRaw sends body as-is with a JSON content type.
func (e *testEnv) requestRaw(method, path, token string, body io.Reader) (int, map[string]interface{}) {
	e.t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
