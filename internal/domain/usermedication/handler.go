package usermedication

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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

// RegisterRoutes wires the assignment routes onto the /medications group,
// next to the catalog routes they extend.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/medication/assign", h.Assign)
	g.DELETE("/medication/assign/:id", h.Unassign)
	g.GET("/medications/user", h.ListForUser)
}

func (h *Handler) Assign(c echo.Context) error {
	var um UserMedication
	if err := c.Bind(&um); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Absent user_id means "assign to me".
	if um.UserID == uuid.Nil {
		id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "login required")
		}
		um.UserID = id
	}

	if err := h.svc.Assign(c.Request().Context(), &um); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, um)
}

func (h *Handler) Unassign(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Unassign(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "assignment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListForUser(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	pg, err := pagination.FromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	details, total, err := h.svc.ListByUser(c.Request().Context(), userID, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if details == nil {
		details = []*Detail{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"medications": details,
		"total_count": total,
		"page":        pg.Page,
		"per_page":    pg.PerPage,
	})
}
