package patient

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labcore/lis/internal/platform/auth"
	"github.com/labcore/lis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/patients")
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.POST("", h.Register, auth.RequirePermission("register-patients"))
	g.PATCH("/:id/payment", h.UpdatePaymentStatus, auth.RequirePermission("payments"))
	g.PATCH("/:id/billing", h.UpdateBilling, auth.RequirePermission("payments"))
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
	g.DELETE("/:id/tests/:testId", h.DeleteTest, auth.RequirePermission("register-patients"))

	r := api.Group("/results", auth.RequirePermission("results"))
	r.GET("/pending", h.PendingResults)
	r.GET("/added", h.AddedResults)
	r.GET("/:id/tests", h.ResultSheet)
	r.PATCH("/:id/results", h.SaveResults)
	r.POST("/:id/reset", h.ResetResults)
	api.PATCH("/results/:id/approve", h.ApproveFinalReport, auth.RequirePermission("final-reports"))

	api.POST("/public/report", h.PublicReport)
}

func patientError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrTestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Test not found on patient")
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientRegisteredBy == "" {
		req.PatientRegisteredBy = auth.UserNameFromContext(c.Request().Context())
	}
	p, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	since, err := parseDays(c.QueryParam("days"), h.svc.now())
	if err != nil {
		return patientError(err)
	}
	f := ListFilter{
		Since:         since,
		PaymentStatus: PaymentStatus(c.QueryParam("paymentStatus")),
		ResultStatus:  ResultStatus(c.QueryParam("resultStatus")),
		ReferencedBy:  c.QueryParam("referencedBy"),
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Search(c echo.Context) error {
	items, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var u PaymentUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePaymentStatus(c.Request().Context(), id, u)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "updatedPatient": p})
}

func (h *Handler) UpdateBilling(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var u BillingUpdate
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if u.UpdatedBy == "" {
		u.UpdatedBy = auth.UserNameFromContext(c.Request().Context())
	}
	p, err := h.svc.UpdateBilling(c.Request().Context(), id, u)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Patient deleted successfully"})
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	testID, err := pathID(c, "testId")
	if err != nil {
		return err
	}
	p, err := h.svc.DeleteTest(c.Request().Context(), id, testID)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Test deleted successfully", "patient": p})
}

func (h *Handler) PendingResults(c echo.Context) error {
	items, err := h.svc.PendingResults(c.Request().Context())
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddedResults(c echo.Context) error {
	items, err := h.svc.AddedResults(c.Request().Context())
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ResultSheet(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	sheet, err := h.svc.ResultSheet(c.Request().Context(), id)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, sheet)
}

func (h *Handler) SaveResults(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var sub ResultsSubmission
	if err := c.Bind(&sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if sub.ResultAddedBy == "" {
		sub.ResultAddedBy = auth.UserNameFromContext(c.Request().Context())
	}
	p, err := h.svc.SaveResults(c.Request().Context(), id, sub)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Results saved successfully", "resultStatus": p.ResultStatus})
}

func (h *Handler) ResetResults(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.ResetResults(c.Request().Context(), id)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Results reset successfully", "patient": p})
}

func (h *Handler) ApproveFinalReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		ApprovedBy string `json:"approvedBy"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.ApprovedBy == "" {
		body.ApprovedBy = auth.UserNameFromContext(c.Request().Context())
	}
	p, err := h.svc.ApproveFinalReport(c.Request().Context(), id, body.ApprovedBy)
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) PublicReport(c echo.Context) error {
	var q PublicQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	out, err := h.svc.PublicReport(c.Request().Context(), q)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No matching patient found. Please check your details.")
	}
	if err != nil {
		return patientError(err)
	}
	return c.JSON(http.StatusOK, out)
}
