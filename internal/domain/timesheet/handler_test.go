package timesheet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsheet/medsheet/internal/platform/ai"
	"github.com/medsheet/medsheet/internal/platform/auth"
)

func withSession(c echo.Context, userID uuid.UUID) {
	req := c.Request()
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID.String())
	c.SetRequest(req.WithContext(ctx))
}

func TestHandler_Create(t *testing.T) {
	svc, _, meds, gw := newSheetTestService()
	h := NewHandler(svc)
	e := echo.New()
	userID := uuid.New()
	med := meds.add(userID, "Aspirin")
	gw.reply = replyFor(med)

	body := fmt.Sprintf(`{"medication_ids":["%s"],"start_date":"2026-09-01","end_date":"2026-09-08"}`, med.ID)
	req := httptest.NewRequest(http.MethodPost, "/timesheets/timesheet", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, userID)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var sheet Timesheet
	json.Unmarshal(rec.Body.Bytes(), &sheet)
	if sheet.Status != StatusActive {
		t.Errorf("expected ACTIVE, got %s", sheet.Status)
	}
}

func TestHandler_Create_BadRequest(t *testing.T) {
	svc, _, _, _ := newSheetTestService()
	h := NewHandler(svc)
	e := echo.New()

	body := `{"medication_ids":[],"start_date":"2026-09-01","end_date":"2026-09-08"}`
	req := httptest.NewRequest(http.MethodPost, "/timesheets/timesheet", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, uuid.New())

	err := h.Create(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Create_BadGatewayOnMalformedReply(t *testing.T) {
	svc, _, meds, gw := newSheetTestService()
	h := NewHandler(svc)
	e := echo.New()
	userID := uuid.New()
	med := meds.add(userID, "Aspirin")
	gw.reply = "not a schedule"

	body := fmt.Sprintf(`{"medication_ids":["%s"],"start_date":"2026-09-01","end_date":"2026-09-08"}`, med.ID)
	req := httptest.NewRequest(http.MethodPost, "/timesheets/timesheet", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, userID)

	err := h.Create(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %v", err)
	}
}

func TestHandler_Create_ServiceUnavailableOnConnectionError(t *testing.T) {
	svc, _, meds, gw := newSheetTestService()
	h := NewHandler(svc)
	e := echo.New()
	userID := uuid.New()
	med := meds.add(userID, "Aspirin")
	gw.err = fmt.Errorf("%w: dial tcp: timeout", ai.ErrConnection)

	body := fmt.Sprintf(`{"medication_ids":["%s"],"start_date":"2026-09-01","end_date":"2026-09-08"}`, med.ID)
	req := httptest.NewRequest(http.MethodPost, "/timesheets/timesheet", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, userID)

	err := h.Create(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}

func TestHandler_Active_NotFound(t *testing.T) {
	svc, _, _, _ := newSheetTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/timesheets/timesheet/active", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, uuid.New())

	err := h.Active(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
