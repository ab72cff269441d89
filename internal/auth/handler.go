package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aihubtotal/backend/internal/middleware"
	"github.com/aihubtotal/backend/internal/models"
)

// CaptchaVerifier gates register and login behind reCAPTCHA.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) bool
}

// UsageReporter supplies today's consumption for the /me response.
type UsageReporter interface {
	Usage(ctx context.Context, accountID uuid.UUID, feature models.Feature) (used, limit int, err error)
}

type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}

type LoginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsPremium bool      `json:"is_premium"`
	Credits   float64   `json:"credits"`
}

type featureUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type Handler struct {
	svc     Service
	captcha CaptchaVerifier
	usage   UsageReporter
	log     *slog.Logger
}

func NewHandler(svc Service, captcha CaptchaVerifier, usage UsageReporter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, captcha: captcha, usage: usage, log: log}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if !h.captcha.Verify(r.Context(), req.CaptchaToken) {
		http.Error(w, `{"error":"please complete the CAPTCHA verification"}`, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}

	_, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			http.Error(w, `{"error":"email already exists"}`, http.StatusConflict)
		case errors.Is(err, ErrEmailNotAllowed), errors.Is(err, ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			h.log.Error("register failed", "error", err)
			http.Error(w, `{"error":"registration failed"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful"})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if !h.captcha.Verify(r.Context(), req.CaptchaToken) {
		http.Error(w, `{"error":"please complete the CAPTCHA verification"}`, http.StatusBadRequest)
		return
	}

	token, acc, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, `{"error":"invalid email or password"}`, http.StatusUnauthorized)
			return
		}
		h.log.Error("login failed", "error", err)
		http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": userResponse{
			ID:        acc.ID,
			Email:     acc.Email,
			IsPremium: acc.IsPremium,
			Credits:   acc.Credits,
		},
	})
}

// Me handles GET /api/auth/me: the account plus today's usage per feature.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	usage := make(map[models.Feature]featureUsage, 2)
	for _, f := range []models.Feature{models.FeatureImage, models.FeatureVideo} {
		used, limit, err := h.usage.Usage(r.Context(), acc.ID, f)
		if err != nil {
			h.log.Error("usage lookup failed", "account_id", acc.ID, "feature", f, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		usage[f] = featureUsage{Used: used, Limit: limit}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         acc.ID,
		"email":      acc.Email,
		"is_premium": acc.IsPremium,
		"credits":    acc.Credits,
		"usage":      usage,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
