package authhandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/auth"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	DB     *pgxpool.Pool
	Secret string
}

func NewHandler(db *pgxpool.Pool, secret string) *Handler {
	return &Handler{DB: db, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	StaffID string `json:"staffId,omitempty"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	var id, orgID, role, hash string
	var staffID *string
	err := h.DB.QueryRow(r.Context(), `
    SELECT id, org_id, role, password_hash, staff_id
    FROM users
    WHERE email = $1
  `, strings.ToLower(strings.TrimSpace(payload.Email))).Scan(&id, &orgID, &role, &hash, &staffID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	claims := auth.Claims{UserID: id, OrgID: orgID, Role: role}
	if staffID != nil {
		claims.StaffID = *staffID
	}
	token, err := auth.GenerateToken(h.Secret, claims, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	api.Success(w, loginResponse{Token: token, Role: role, StaffID: claims.StaffID}, reqID)
}
