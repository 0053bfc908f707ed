package expense

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
	g := api.Group("/expenses", auth.RequirePermission("expenses"))
	g.GET("", h.List)
	g.GET("/date-range", h.ListByRange)
	g.POST("", h.Add)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func expenseError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Expense not found")
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}

func (h *Handler) Add(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.Add(c.Request().Context(), in)
	if err != nil {
		return expenseError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "expense": e})
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return expenseError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "expenses": items})
}

func (h *Handler) ListByRange(c echo.Context) error {
	res, err := h.svc.ListByRange(c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return expenseError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "expenses": res.Expenses, "total": res.Total})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return expenseError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "expense": e})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return expenseError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Expense deleted successfully"})
}
