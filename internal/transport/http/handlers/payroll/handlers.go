package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/audit"
	"workforce/internal/domain/org"
	"workforce/internal/domain/payroll"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Audit   *audit.Service
	Orgs    *org.Store
}

func NewHandler(service *payroll.Service, auditSvc *audit.Service, orgs *org.Store) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Orgs: orgs}
}

type periodPayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type allowancePayload struct {
	AmountCents int64  `json:"amountCents"`
	Notes       string `json:"notes"`
}

type periodDetail struct {
	Period  payroll.Period  `json:"period"`
	Entries []payroll.Entry `json:"entries"`
}

type periodList struct {
	Periods []payroll.Period `json:"periods"`
	Total   int              `json:"total"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/periods", h.handleListPeriods)
		r.Post("/periods", h.handleCreatePeriod)
		r.Get("/periods/{periodID}", h.handleGetPeriod)
		r.Post("/periods/{periodID}/generate", h.handleGenerate)
		r.Post("/periods/{periodID}/finalize", h.handleFinalize)
		r.Post("/periods/{periodID}/archive", h.handleArchive)
		r.Post("/periods/{periodID}/unarchive", h.handleUnarchive)
		r.Get("/periods/{periodID}/summary", h.handleSummary)
		r.Get("/periods/{periodID}/export", h.handleExport)
		r.Post("/periods/{periodID}/pay-all", h.handlePayAll)
		r.Post("/entries/{entryID}/allowances", h.handleAddAllowance)
		r.Put("/entries/{entryID}/allowances/{index}", h.handleEditAllowance)
		r.Delete("/entries/{entryID}/allowances/{index}", h.handleDeleteAllowance)
		r.Post("/entries/{entryID}/pay", h.handleMarkPaid)
		r.Post("/entries/{entryID}/unpay", h.handleUnmarkPaid)
		r.Get("/payslips/me", h.handleMyPayslip)
		r.Get("/payslips/me/{periodID}/pdf", h.handleMyPayslipPDF)
	})
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return middleware.UserContext{}, false
	}
	if user.Role != auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return middleware.UserContext{}, false
	}
	return user, true
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (middleware.UserContext, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return middleware.UserContext{}, false
	}
	return user, true
}

// allow checks one org capability and writes the refusal itself. A nil org
// store (tests, single-tenant deploys) grants everything.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, orgID string, check func(org.Capabilities) bool, code string) bool {
	if h.Orgs == nil {
		return true
	}
	sub, err := h.Orgs.GetSubscription(r.Context(), orgID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "capability_check_failed", "failed to resolve org capabilities", middleware.GetRequestID(r.Context()))
		return false
	}
	if !check(org.Compute(sub, time.Now())) {
		api.Fail(w, http.StatusForbidden, code, "operation not permitted for this organization", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, payroll.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payroll.ErrImmutablePeriod):
		api.Fail(w, http.StatusConflict, "period_finalized", err.Error(), requestID)
	case errors.Is(err, payroll.ErrConcurrencyConflict):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, payroll.ErrNoEntries):
		api.Fail(w, http.StatusConflict, "no_entries", err.Error(), requestID)
	case errors.Is(err, payroll.ErrExportNotReady):
		api.Fail(w, http.StatusConflict, "export_not_ready", err.Error(), requestID)
	case errors.Is(err, payroll.ErrPayslipNotAvailable):
		api.Fail(w, http.StatusNotFound, "payslip_not_available", "payslip not yet available", requestID)
	case errors.Is(err, payroll.ErrComputation):
		api.Fail(w, http.StatusUnprocessableEntity, "computation_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}

func (h *Handler) record(r *http.Request, user middleware.UserContext, action, entityType, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, action, entityType, entityID, reqID, details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	periods, total, err := h.Service.ListPeriods(r.Context(), user.OrgID, page.Limit, page.Offset)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periodList{Periods: periods, Total: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "period name is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	period, err := h.Service.CreatePeriod(r.Context(), user.OrgID, payload.Name, start, end)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionPeriodCreate, "payroll_period", period.ID, payload)
	api.Created(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	period, err := h.Service.GetPeriod(r.Context(), user.OrgID, periodID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	entries, err := h.Service.ListEntries(r.Context(), user.OrgID, periodID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periodDetail{Period: period, Entries: entries}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, user.OrgID, func(c org.Capabilities) bool { return c.CanPreview }, "preview_not_allowed") {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	entries, err := h.Service.GenerateEntries(r.Context(), user.OrgID, periodID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionPeriodGenerate, "payroll_period", periodID, map[string]int{"entries": len(entries)})
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	period, err := h.Service.Finalize(r.Context(), user.OrgID, periodID, user.UserID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionPeriodFinalize, "payroll_period", periodID, nil)
	api.Success(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true, audit.ActionPeriodArchive)
}

func (h *Handler) handleUnarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false, audit.ActionPeriodUnarchive)
}

func (h *Handler) setArchived(w http.ResponseWriter, r *http.Request, archived bool, action string) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	var err error
	if archived {
		err = h.Service.Archive(r.Context(), user.OrgID, periodID)
	} else {
		err = h.Service.Unarchive(r.Context(), user.OrgID, periodID)
	}
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, action, "payroll_period", periodID, nil)
	api.Success(w, map[string]bool{"archived": archived}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	summary, err := h.Service.Summary(r.Context(), user.OrgID, periodID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, user.OrgID, func(c org.Capabilities) bool { return c.CanExport }, "export_not_allowed") {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	data, err := h.Service.ExportCSV(r.Context(), user.OrgID, periodID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-register-%s.csv", periodID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handlePayAll(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, user.OrgID, func(c org.Capabilities) bool { return c.CanPayout }, "payout_not_allowed") {
		return
	}
	periodID := chi.URLParam(r, "periodID")

	count, err := h.Service.MarkAllPaid(r.Context(), user.OrgID, periodID, user.UserID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionEntryPaid, "payroll_period", periodID, map[string]int{"marked": count})
	api.Success(w, map[string]int{"marked": count}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddAllowance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var payload allowancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	entry, err := h.Service.AddAllowance(r.Context(), user.OrgID, entryID, payload.AmountCents, payload.Notes)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionEntryAllowance, "payroll_entry", entryID, payload)
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEditAllowance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "allowance index must be an integer", middleware.GetRequestID(r.Context()))
		return
	}

	var payload allowancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	entry, err := h.Service.EditAllowance(r.Context(), user.OrgID, entryID, index, payload.AmountCents, payload.Notes)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionEntryAllowance, "payroll_entry", entryID, payload)
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAllowance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", "allowance index must be an integer", middleware.GetRequestID(r.Context()))
		return
	}

	entry, err := h.Service.DeleteAllowance(r.Context(), user.OrgID, entryID, index)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, audit.ActionEntryAllowance, "payroll_entry", entryID, map[string]int{"deletedIndex": index})
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	h.setPaid(w, r, true, audit.ActionEntryPaid)
}

func (h *Handler) handleUnmarkPaid(w http.ResponseWriter, r *http.Request) {
	h.setPaid(w, r, false, audit.ActionEntryUnpaid)
}

func (h *Handler) setPaid(w http.ResponseWriter, r *http.Request, paid bool, action string) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	if !h.allow(w, r, user.OrgID, func(c org.Capabilities) bool { return c.CanPayout }, "payout_not_allowed") {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var entry payroll.Entry
	var err error
	if paid {
		entry, err = h.Service.MarkPaid(r.Context(), user.OrgID, entryID, user.UserID)
	} else {
		entry, err = h.Service.UnmarkPaid(r.Context(), user.OrgID, entryID, user.UserID)
	}
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	h.record(r, user, action, "payroll_entry", entryID, nil)
	api.Success(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyPayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if user.StaffID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "no staff profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}
	periodID := r.URL.Query().Get("periodId")
	if periodID == "" {
		api.Fail(w, http.StatusBadRequest, "validation_error", "periodId query parameter is required", middleware.GetRequestID(r.Context()))
		return
	}

	entry, period, err := h.Service.PayslipForStaff(r.Context(), user.OrgID, periodID, user.StaffID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periodDetail{Period: period, Entries: []payroll.Entry{entry}}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyPayslipPDF(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if user.StaffID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "no staff profile linked to this account", middleware.GetRequestID(r.Context()))
		return
	}
	periodID := chi.URLParam(r, "periodID")

	entry, period, err := h.Service.PayslipForStaff(r.Context(), user.OrgID, periodID, user.StaffID)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	data, err := payroll.RenderPayslipPDF(period, entry)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_render_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", periodID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
