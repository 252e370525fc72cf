package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsheet/medsheet/internal/platform/auth"
	"github.com/medsheet/medsheet/internal/platform/db"
)

type Handler struct {
	svc      *Service
	sessions *auth.SessionManager
}

func NewHandler(svc *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes wires the auth and user route groups. Login and sign-up
// are public; everything else requires a session.
func (h *Handler) RegisterRoutes(authGroup, users *echo.Group, session echo.MiddlewareFunc) {
	authGroup.POST("/login", h.Login)
	authGroup.POST("/sign-up", h.SignUp)
	authGroup.GET("/logout", h.Logout, session)
	authGroup.GET("/user", h.CurrentUser, session)

	users.POST("/user", h.CreateUser)
	users.GET("", h.ListUsers, auth.RequireRole(RoleAdmin))
	users.GET("/:id", h.GetUser, auth.RequireRole(RoleAdmin))
	users.DELETE("/:id", h.DeleteUser, auth.RequireRole(RoleAdmin))
	users.PUT("/:id/email/:email", h.UpdateEmail)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) Login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Authenticate(c.Request().Context(), creds.Username, creds.Password)
	switch {
	case err == nil:
	case db.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, "wrong password")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cookie, err := h.sessions.Issue(u.ID.String(), u.Username, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to start session")
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"email":    u.Email,
		"role":     u.Role,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) SignUp(c echo.Context) error {
	return h.CreateUser(c)
}

func (h *Handler) CurrentUser(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Create(c.Request().Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"inserted_id": u.ID.String()})
}

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if db.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateEmail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	email := c.Param("email")

	if err := h.svc.UpdateEmail(c.Request().Context(), id, email); err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, ve.Error())
		case errors.Is(err, ErrDuplicate):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case db.IsNotFound(err):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "email updated"})
}
