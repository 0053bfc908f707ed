package commission

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/doctor-share")
	g.GET("/doctor-statement", h.DoctorStatement)
	g.GET("/doctor-breakdown", h.DoctorTestBreakdown)
	g.GET("/lab-referral-summary", h.LabReferralSummary)
	g.GET("/doctor-patients", h.DoctorPatients)
	g.GET("/lab-referral-patients", h.LabReferralPatients)
}

func bindQuery(c echo.Context) Query {
	return Query{
		DoctorName: c.QueryParam("doctorName"),
		StartDate:  c.QueryParam("startDate"),
		EndDate:    c.QueryParam("endDate"),
	}
}

// reportError keeps validation messages and hides everything else.
func reportError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
}

func (h *Handler) DoctorStatement(c echo.Context) error {
	out, err := h.svc.DoctorStatement(c.Request().Context(), bindQuery(c))
	if err != nil {
		return reportError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DoctorTestBreakdown(c echo.Context) error {
	out, err := h.svc.DoctorTestBreakdown(c.Request().Context(), bindQuery(c))
	if err != nil {
		return reportError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) LabReferralSummary(c echo.Context) error {
	out, err := h.svc.LabReferralSummary(c.Request().Context(), bindQuery(c))
	if err != nil {
		return reportError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DoctorPatients(c echo.Context) error {
	out, err := h.svc.DoctorPatients(c.Request().Context(), bindQuery(c))
	if err != nil {
		return reportError(err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) LabReferralPatients(c echo.Context) error {
	out, err := h.svc.LabReferralPatients(c.Request().Context(), bindQuery(c))
	if err != nil {
		return reportError(err)
	}
	return c.JSON(http.StatusOK, out)
}
