package medication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsheet/medsheet/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

// withSession puts a user id on the request context the way the session
// middleware would.
func withSession(c echo.Context, userID uuid.UUID) {
	req := c.Request()
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, auth.RoleAdmin)
	c.SetRequest(req.WithContext(ctx))
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Aspirin","contents":"ASA 500mg","objective":"Pain relief","sideEffects":"Stomach irritation","dosageSchedule":"1x3 daily"}`
	req := httptest.NewRequest(http.MethodPost, "/medications/medication", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, uuid.New())

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var m Medication
	json.Unmarshal(rec.Body.Bytes(), &m)
	if m.Name != "Aspirin" {
		t.Errorf("expected 'Aspirin', got %s", m.Name)
	}
}

func TestHandler_Create_MissingField(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Aspirin"}`
	req := httptest.NewRequest(http.MethodPost, "/medications/medication", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, uuid.New())

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected error for missing fields")
	}
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Create_NoSession(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/medications/medication", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	h, e := newTestHandler()
	userID := uuid.New()
	for i := 0; i < 3; i++ {
		m := validMedication(userID)
		if err := h.svc.Create(context.Background(), m); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/medications?page=1&per_page=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Medications []Medication `json:"medications"`
		TotalCount  int          `json:"total_count"`
		Page        int          `json:"page"`
		PerPage     int          `json:"per_page"`
	}
	json.Unmarshal(rec.Body.Bytes(), &envelope)
	if envelope.TotalCount != 3 || len(envelope.Medications) != 2 {
		t.Errorf("expected 2 of 3, got %d of %d", len(envelope.Medications), envelope.TotalCount)
	}
	if envelope.Page != 1 || envelope.PerPage != 2 {
		t.Errorf("unexpected page info: %+v", envelope)
	}
}

func TestHandler_List_BadPage(t *testing.T) {
	h, e := newTestHandler()

	for _, query := range []string{"page=0", "page=-1", "page=abc", "per_page=0"} {
		req := httptest.NewRequest(http.MethodGet, "/medications?"+query, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.List(c)
		if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %v", query, err)
		}
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Delete_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Delete(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
