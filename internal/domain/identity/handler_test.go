package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/labcore/lis/internal/platform/auth"
)

func jsonContext(method, body string, rec *httptest.ResponseRecorder, claims *auth.Claims) echo.Context {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	return echo.New().NewContext(req, rec)
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	return httpErr.Code
}

func TestHandler_Login(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	mustRegister(t, svc, "sana", "secret", auth.RoleSeniorReceptionist)

	rec := httptest.NewRecorder()
	if err := h.Login(jsonContext(http.MethodPost, `{"userName":"sana","password":"secret"}`, rec, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			UserName    string   `json:"userName"`
			Permissions []string `json:"permissions"`
		} `json:"user"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Token == "" || body.User.UserName != "sana" || len(body.User.Permissions) != 8 {
		t.Errorf("unexpected login body %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("password hash leaked in response")
	}

	err := h.Login(jsonContext(http.MethodPost, `{"userName":"sana","password":"nope"}`, httptest.NewRecorder(), nil))
	if got := httpCode(t, err); got != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", got)
	}
}

func TestHandler_ChangePasswordUsesCaller(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	u := mustRegister(t, svc, "sana", "secret", auth.RoleSeniorReceptionist)

	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.String()}, Role: u.Role}
	rec := httptest.NewRecorder()
	c := jsonContext(http.MethodPatch, `{"currentPassword":"secret","newPassword":"better"}`, rec, claims)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	dev := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "dev-user"}, Role: auth.RoleAdmin}
	err := h.ChangePassword(jsonContext(http.MethodPatch, `{"currentPassword":"a","newPassword":"bcd"}`, httptest.NewRecorder(), dev))
	if got := httpCode(t, err); got != http.StatusUnauthorized {
		t.Errorf("dev identity: expected 401, got %d", got)
	}
}

func TestHandler_RegisterDuplicate(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	mustRegister(t, svc, "sana", "secret", auth.RoleAdmin)

	body := `{"name":"Sana","userName":"sana","password":"secret","role":"admin"}`
	if got := httpCode(t, h.Register(jsonContext(http.MethodPost, body, httptest.NewRecorder(), nil))); got != http.StatusConflict {
		t.Errorf("expected 409, got %d", got)
	}
}
