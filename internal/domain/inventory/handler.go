package inventory

import (
	"context"
	"errors"
	"fmt"
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
	g := api.Group("/inventory", auth.RequirePermission("inventory"))
	g.GET("/items", h.ListItems)
	g.POST("/items", h.CreateItem)
	g.PUT("/items/:id", h.UpdateItem)
	g.DELETE("/items/:id", h.DeleteItem)

	g.GET("/transactions", h.Transactions)
	g.GET("/transactions/report", h.TransactionsReport)
	g.POST("/transactions/add", h.AddStock)
	g.POST("/transactions/remove", h.RemoveStock)
	g.DELETE("/transactions/:id", h.DeleteTransaction)

	g.GET("/stock-levels", h.StockLevels)
	g.GET("/daily-summary", h.DailySummary)
}

func inventoryError(err error) error {
	var short *InsufficientStockError
	switch {
	case errors.As(err, &short):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Insufficient stock. Available: %v", short.Available))
	case errors.Is(err, ErrItemNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Item not found")
	case errors.Is(err, ErrTransactionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Transaction not found")
	case errors.Is(err, ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, "Item ID already exists")
	case errors.Is(err, ErrInUse):
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot delete item with existing transactions")
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListItems(c echo.Context) error {
	items, err := h.svc.ListItems(c.Request().Context())
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "items": items})
}

func (h *Handler) CreateItem(c echo.Context) error {
	var it Item
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateItem(c.Request().Context(), &it); err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "item": it})
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var it Item
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	it.ID = id
	if err := h.svc.UpdateItem(c.Request().Context(), &it); err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "item": it})
}

func (h *Handler) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteItem(c.Request().Context(), id); err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Item deleted successfully"})
}

func (h *Handler) AddStock(c echo.Context) error {
	return h.stock(c, h.svc.AddStock)
}

func (h *Handler) RemoveStock(c echo.Context) error {
	return h.stock(c, h.svc.RemoveStock)
}

func (h *Handler) stock(c echo.Context, apply func(ctx context.Context, req StockRequest) (*Transaction, error)) error {
	var req StockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := apply(c.Request().Context(), req)
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"success": true, "transaction": t})
}

func (h *Handler) Transactions(c echo.Context) error {
	items, err := h.svc.Transactions(c.Request().Context())
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "transactions": items})
}

func (h *Handler) TransactionsReport(c echo.Context) error {
	items, err := h.svc.TransactionsInRange(c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "transactions": items})
}

func (h *Handler) DeleteTransaction(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTransaction(c.Request().Context(), id); err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Transaction deleted successfully"})
}

func (h *Handler) StockLevels(c echo.Context) error {
	levels, err := h.svc.StockLevels(c.Request().Context())
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "stockLevels": levels})
}

func (h *Handler) DailySummary(c echo.Context) error {
	summary, err := h.svc.DailySummary(c.Request().Context())
	if err != nil {
		return inventoryError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "dailySummary": summary})
}
