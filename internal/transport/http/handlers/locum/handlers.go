package locumhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/auth"
	"workforce/internal/domain/audit"
	"workforce/internal/domain/locum"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Handler struct {
	Service *locum.Service
	Audit   *audit.Service
}

func NewHandler(service *locum.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

type statusPayload struct {
	Status string `json:"status"`
}

type payoutList struct {
	Payouts    []locum.PayoutEntry `json:"payouts"`
	TotalCents int64               `json:"totalCents"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/locum", func(r chi.Router) {
		r.Get("/payouts", h.handleListPayouts)
		r.Post("/shifts/{shiftID}/status", h.handleMarkShift)
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

func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, locum.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, locum.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}

func (h *Handler) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	v := shared.NewValidator()
	start, _ := v.Date("start", r.URL.Query().Get("start"))
	end, _ := v.Date("end", r.URL.Query().Get("end"))
	v.DateOrder("start", start, "end", end)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	payouts, total, err := h.Service.ListPayouts(r.Context(), user.OrgID, start, end)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payoutList{Payouts: payouts, TotalCents: total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMarkShift(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	shiftID := chi.URLParam(r, "shiftID")

	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Service.MarkShift(r.Context(), user.OrgID, shiftID, payload.Status, user.UserID); err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if h.Audit != nil {
		reqID := middleware.GetRequestID(r.Context())
		if err := h.Audit.Record(r.Context(), user.OrgID, user.UserID, audit.ActionLocumStatus, "shift", shiftID, reqID, payload); err != nil {
			slog.Warn("audit record failed", "action", audit.ActionLocumStatus, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": payload.Status}, middleware.GetRequestID(r.Context()))
}
