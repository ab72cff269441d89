package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aihubtotal/backend/internal/middleware"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Packages handles GET /api/credits/packages. Public, read-only catalog.
func (h *Handler) Packages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Packages())
}

type purchaseRequest struct {
	Package string `json:"package"`
}

type purchaseResponse struct {
	Message string  `json:"message"`
	Credits float64 `json:"credits"`
}

// Purchase handles POST /api/credits/purchase for the authenticated account.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}

	txn, newBalance, err := h.svc.Purchase(r.Context(), acc.ID, req.Package)
	if err != nil {
		if errors.Is(err, ErrUnknownPackage) {
			http.Error(w, `{"error":"invalid package"}`, http.StatusBadRequest)
			return
		}
		h.log.Error("purchase failed", "account_id", acc.ID, "package", req.Package, "error", err)
		http.Error(w, `{"error":"purchase failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, purchaseResponse{
		Message: fmt.Sprintf("Added %d credits!", txn.CreditsGranted),
		Credits: newBalance,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
