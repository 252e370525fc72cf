package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsheet/medsheet/internal/platform/auth"
)

func newHandlerFixture() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	sessions := auth.NewSessionManager("test-secret", time.Hour, false)
	return NewHandler(svc, sessions), echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Login(t *testing.T) {
	h, e := newHandlerFixture()
	u, err := h.svc.Create(context.Background(), "alice", "alice@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, rec := postJSON(e, "/auth/login", `{"username":"alice","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["user_id"] != u.ID.String() || body["role"] != RoleUser {
		t.Errorf("unexpected body: %v", body)
	}

	var found bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie")
	}
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	h, e := newHandlerFixture()
	if _, err := h.svc.Create(context.Background(), "alice", "alice@example.com", "s3cret", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ := postJSON(e, "/auth/login", `{"username":"alice","password":"wrong"}`)
	err := h.Login(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Login_UnknownUser(t *testing.T) {
	h, e := newHandlerFixture()

	c, _ := postJSON(e, "/auth/login", `{"username":"nobody","password":"pw"}`)
	err := h.Login(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreateUser(t *testing.T) {
	h, e := newHandlerFixture()

	c, rec := postJSON(e, "/users/user", `{"username":"alice","email":"alice@example.com","password":"pw"}`)
	if err := h.CreateUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if _, err := uuid.Parse(body["inserted_id"]); err != nil {
		t.Errorf("expected inserted_id to be a uuid, got %q", body["inserted_id"])
	}
}

func TestHandler_CreateUser_Duplicate(t *testing.T) {
	h, e := newHandlerFixture()
	if _, err := h.svc.Create(context.Background(), "alice", "alice@example.com", "pw", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _ := postJSON(e, "/users/user", `{"username":"alice","email":"other@example.com","password":"pw"}`)
	err := h.CreateUser(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_CreateUser_BadEmail(t *testing.T) {
	h, e := newHandlerFixture()

	c, _ := postJSON(e, "/users/user", `{"username":"alice","email":"nope","password":"pw"}`)
	err := h.CreateUser(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %v", err)
	}
}

func TestHandler_Logout(t *testing.T) {
	h, e := newHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be cleared")
	}
}

func TestHandler_CurrentUser(t *testing.T) {
	h, e := newHandlerFixture()
	u, err := h.svc.Create(context.Background(), "alice", "alice@example.com", "pw", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/user", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, u.ID.String())
	c.SetRequest(req.WithContext(ctx))

	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("password hash must never be serialized")
	}
}
