package timesheet

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsheet/medsheet/internal/platform/ai"
	"github.com/medsheet/medsheet/internal/platform/auth"
	"github.com/medsheet/medsheet/internal/platform/db"
	"github.com/medsheet/medsheet/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the timesheet routes. The active route must be
// registered before the :id route so "active" is not parsed as an id.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/timesheet", h.Create)
	g.GET("/timesheets", h.List)
	g.GET("/timesheet/active", h.Active)
	g.GET("/timesheet/:id", h.Get)
	g.PUT("/timesheet/:id", h.Edit)
	g.DELETE("/timesheet/:id", h.Delete)
}

type buildRequest struct {
	MedicationIDs []string `json:"medication_ids"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
}

func sessionUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}

// buildError maps generation failures onto status codes: unreachable AI is
// a 503, an unusable reply is a 502, anything else is the caller's fault.
func buildError(err error) error {
	var re *ResponseError
	switch {
	case errors.Is(err, ai.ErrConnection):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "scheduling service unavailable")
	case errors.As(err, &re):
		return echo.NewHTTPError(http.StatusBadGateway, re.Error())
	case db.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "timesheet not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	var req buildRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.svc.Create(c.Request().Context(), userID, req.MedicationIDs, req.StartDate, req.EndDate)
	if err != nil {
		return buildError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) List(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	pg, err := pagination.FromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sheets, total, err := h.svc.List(c.Request().Context(), userID, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if sheets == nil {
		sheets = []*Timesheet{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"timesheets":  sheets,
		"total_count": total,
		"page":        pg.Page,
		"per_page":    pg.PerPage,
	})
}

func (h *Handler) Active(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.ActiveForUser(c.Request().Context(), userID)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "no active timesheet")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "timesheet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Edit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req buildRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	t, err := h.svc.Edit(c.Request().Context(), id, req.MedicationIDs, req.StartDate, req.EndDate)
	if err != nil {
		return buildError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "timesheet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
