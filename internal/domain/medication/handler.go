package medication

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

// RegisterRoutes wires the medication catalog routes onto the /medications
// group. Catalog writes are admin-only; reads need any session.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	admin := auth.RequireRole(auth.RoleAdmin)
	g.POST("/medication", h.Create, admin)
	g.POST("/medication/upload", h.Upload, admin)
	g.GET("", h.List)
	g.GET("/medication/:id", h.Get)
	g.PUT("/medication/:id", h.Update)
	g.DELETE("/medication/:id", h.Delete)
}

func sessionUserID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}
	m.UserID = userID

	if err := h.svc.Create(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

// Upload takes a multipart form with a "file" field and stores the
// medication extracted from it.
func (h *Handler) Upload(c echo.Context) error {
	userID, err := sessionUserID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	m, err := h.svc.CreateFromFile(c.Request().Context(), userID, fh.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c echo.Context) error {
	pg, err := pagination.FromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filters := map[string]string{}
	for _, k := range []string{"name", "contents", "objective", "side_effects"} {
		if v := c.QueryParam(k); v != "" {
			filters[k] = v
		}
	}

	meds, total, err := h.svc.Search(c.Request().Context(), filters, pg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if meds == nil {
		meds = []*Medication{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"medications": meds,
		"total_count": total,
		"page":        pg.Page,
		"per_page":    pg.PerPage,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.ID = id

	if err := h.svc.Update(c.Request().Context(), &m); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
