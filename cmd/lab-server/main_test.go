package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/labcore/lis/internal/config"
	"github.com/labcore/lis/internal/platform/auth"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:         env,
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		JWTTTL:      time.Hour,
		BodyLimit:   "1M",
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

func newTestServer(env string) *echo.Echo {
	e, api := newEcho(testConfig(env), zerolog.Nop())
	api.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, auth.UserNameFromContext(c.Request().Context()))
	})
	api.GET("/lab-info", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	api.POST("/lab-info", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	return e
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthIsPublic(t *testing.T) {
	rec := serve(newTestServer("production"), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on health response")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestServer_RequiresToken(t *testing.T) {
	e := newTestServer("production")

	if rec := serve(e, http.MethodGet, "/api/v1/whoami", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/api/v1/whoami", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rec.Code)
	}

	cfg := testConfig("production")
	token, _, err := auth.NewTokenIssuer(cfg.SigningKey(), cfg.JWTTTL).Issue("u-1", "Sana", auth.RoleSeniorLabTech, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := serve(e, http.MethodGet, "/api/v1/whoami", token)
	if rec.Code != http.StatusOK || rec.Body.String() != "Sana" {
		t.Errorf("expected 200 Sana, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_LabInfoReadIsPublic(t *testing.T) {
	e := newTestServer("production")

	if rec := serve(e, http.MethodGet, "/api/v1/lab-info", ""); rec.Code != http.StatusOK {
		t.Errorf("GET: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodPost, "/api/v1/lab-info", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("POST: expected 401, got %d", rec.Code)
	}
}

func TestServer_DevAuthRunsAsDeveloper(t *testing.T) {
	rec := serve(newTestServer("development"), http.MethodGet, "/api/v1/whoami", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "Developer" {
		t.Errorf("expected 200 Developer, got %d %q", rec.Code, rec.Body.String())
	}
}
