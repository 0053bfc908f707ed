package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labcore/lis/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/users")
	g.POST("/login", h.Login)
	g.GET("/me", h.Me)
	g.PATCH("/me/password", h.ChangePassword)

	g.POST("", h.Register, auth.RequirePermission("create-user"))
	g.GET("", h.List, auth.RequirePermission("all-users"))

	admin := g.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/:id", h.Delete)
	admin.PATCH("/:id/password", h.ResetPassword)
	admin.PATCH("/:id/permissions", h.UpdatePermissions)
}

func userError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong").SetInternal(err)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// callerID is the id of the authenticated user. The development identity
// has no account and is rejected.
func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "no user account for this token")
	}
	return id, nil
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      res.User,
	})
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"user":    u,
	})
}

func (h *Handler) Me(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "users": users})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted successfully"})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ChangePassword(c.Request().Context(), id, body.CurrentPassword, body.NewPassword); err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Password changed successfully"})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ResetPassword(c.Request().Context(), id, body.NewPassword); err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Password reset successfully"})
}

func (h *Handler) UpdatePermissions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var body struct {
		Permissions []string `json:"permissions"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	by := Modifier{UserID: auth.UserIDFromContext(ctx), Name: auth.UserNameFromContext(ctx)}
	u, err := h.svc.UpdatePermissions(ctx, id, body.Permissions, by)
	if err != nil {
		return userError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Permissions updated successfully",
		"user":    u,
	})
}
