package settings

import (
	"errors"
	"net/http"

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
	api.GET("/lab-info", h.GetLabInfo)
	api.POST("/lab-info", h.SaveLabInfo, auth.RequirePermission("edit-lab-info"))

	g := api.Group("/settings")
	g.GET("/general", h.GetGeneral)
	g.PUT("/general", h.UpdateGeneral, auth.RequirePermission("edit-lab-info"))

	g.GET("/filters", h.ListFilters)
	g.GET("/filters/:type", h.GetFilter)
	admin := g.Group("/filters", auth.RequireRole(auth.RoleAdmin))
	admin.PUT("/:type", h.SetFilter)
	admin.DELETE("/:type", h.ResetFilter)
	admin.PATCH("/:type/history", h.UpdateHistory)
}

func settingsError(err error) error {
	if errors.Is(err, ErrInvalid) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}

// fillUpdater defaults an empty updatedBy to the caller's name.
func fillUpdater(c echo.Context, name *string) {
	if *name == "" {
		*name = auth.UserNameFromContext(c.Request().Context())
	}
}

func (h *Handler) GetLabInfo(c echo.Context) error {
	li, err := h.svc.LabInfo(c.Request().Context())
	if err != nil {
		return settingsError(err)
	}
	if li == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{})
	}
	return c.JSON(http.StatusOK, li)
}

func (h *Handler) SaveLabInfo(c echo.Context) error {
	var li LabInfo
	if err := c.Bind(&li); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.SaveLabInfo(c.Request().Context(), &li)
	if err != nil {
		return settingsError(err)
	}
	status, msg := http.StatusOK, "Lab info updated"
	if created {
		status, msg = http.StatusCreated, "Lab info created"
	}
	return c.JSON(status, map[string]interface{}{"success": true, "message": msg, "labInfo": li})
}

func (h *Handler) GetGeneral(c echo.Context) error {
	g, err := h.svc.General(c.Request().Context())
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) UpdateGeneral(c echo.Context) error {
	var u GeneralUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fillUpdater(c, &u.UpdatedBy)
	g, err := h.svc.UpdateGeneral(c.Request().Context(), u)
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) ListFilters(c echo.Context) error {
	items, err := h.svc.Filters(c.Request().Context())
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetFilter(c echo.Context) error {
	f, err := h.svc.Filter(c.Request().Context(), c.Param("type"))
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) SetFilter(c echo.Context) error {
	var body struct {
		DaysLimit int    `json:"daysLimit"`
		UpdatedBy string `json:"updatedBy"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fillUpdater(c, &body.UpdatedBy)
	f, err := h.svc.SetFilter(c.Request().Context(), c.Param("type"), body.DaysLimit, body.UpdatedBy)
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ResetFilter(c echo.Context) error {
	f, err := h.svc.ResetFilter(c.Request().Context(), c.Param("type"))
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) UpdateHistory(c echo.Context) error {
	var u HistoryUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fillUpdater(c, &u.UpdatedBy)
	f, err := h.svc.UpdateHistory(c.Request().Context(), c.Param("type"), u)
	if err != nil {
		return settingsError(err)
	}
	return c.JSON(http.StatusOK, f)
}
