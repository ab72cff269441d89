package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aihubtotal/backend/internal/metering"
	"github.com/aihubtotal/backend/internal/middleware"
	"github.com/aihubtotal/backend/internal/models"
)

// MeteringEngine is the admission/accounting pair the gateway wraps around
// every generation call.
type MeteringEngine interface {
	Admit(ctx context.Context, accountID uuid.UUID, feature models.Feature) error
	Charge(ctx context.Context, accountID uuid.UUID, feature models.Feature) error
}

// GeminiAdapter covers the image-model backends.
type GeminiAdapter interface {
	GenerateImage(ctx context.Context, prompt, apiKey string) ([]byte, error)
	DescribeImage(ctx context.Context, image []byte, apiKey string) (string, error)
	DescribeVideo(ctx context.Context, video []byte, apiKey string) (string, error)
	GenerateLandingPage(ctx context.Context, idea, apiKey string) (string, error)
}

// VideoAdapter renders text into video bytes.
type VideoAdapter interface {
	TextToVideo(ctx context.Context, prompt, token string) ([]byte, error)
}

// TryOnAdapter composites a garment onto a person photo.
type TryOnAdapter interface {
	TryOn(ctx context.Context, person, garment []byte, description, token string) ([]byte, error)
}

// GenerateHandler serves the six metered generation endpoints. Each follows
// the same sequence: Admit, run the adapter, Charge only on adapter success.
// A failed generation therefore costs the user nothing, and a successful one
// is metered exactly once.
type GenerateHandler struct {
	Engine         MeteringEngine
	Gemini         GeminiAdapter
	Video          VideoAdapter
	TryOnBackend   TryOnAdapter
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// metered runs the admit/invoke/charge sequence and writes the response.
// invoke is the adapter call; its result is the JSON body on success.
func (h *GenerateHandler) metered(w http.ResponseWriter, r *http.Request, feature models.Feature, invoke func(ctx context.Context) (any, error)) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := h.Engine.Admit(r.Context(), acc.ID, feature); err != nil {
		var lr *metering.LimitReachedError
		switch {
		case errors.As(err, &lr):
			msg := fmt.Sprintf("Daily limit reached (%d). Purchase credits for unlimited access!", lr.Limit)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": msg})
		case errors.Is(err, metering.ErrAccountNotFound):
			http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		default:
			h.Logger.Error("admission check failed", "account_id", acc.ID, "feature", feature, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		}
		return
	}

	result, err := invoke(r.Context())
	if err != nil {
		// Adapter failure: surfaced, and deliberately not charged.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	// The artifact is already produced; a charge that cannot be applied must
	// not turn this into a failure. Log loudly and return the result.
	if err := h.Engine.Charge(r.Context(), acc.ID, feature); err != nil {
		h.Logger.Error("charge failed after delivery", "account_id", acc.ID, "feature", feature, "error", err)
	}

	writeJSON(w, http.StatusOK, result)
}

// --- POST /api/generate/image ---

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	APIKey string `json:"api_key"`
}

func (h *GenerateHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req generateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		http.Error(w, `{"error":"prompt required"}`, http.StatusBadRequest)
		return
	}
	h.metered(w, r, models.FeatureImage, func(ctx context.Context) (any, error) {
		image, err := h.Gemini.GenerateImage(ctx, req.Prompt, req.APIKey)
		if err != nil {
			return nil, err
		}
		return map[string]string{"image": base64.StdEncoding.EncodeToString(image)}, nil
	})
}

// --- POST /api/prompt/image (multipart) ---

func (h *GenerateHandler) PromptFromImage(w http.ResponseWriter, r *http.Request) {
	image, ok := h.readUpload(w, r, "image")
	if !ok {
		return
	}
	apiKey := r.FormValue("api_key")
	h.metered(w, r, models.FeatureImage, func(ctx context.Context) (any, error) {
		prompt, err := h.Gemini.DescribeImage(ctx, image, apiKey)
		if err != nil {
			return nil, err
		}
		return map[string]string{"prompt": prompt}, nil
	})
}

// --- POST /api/prompt/video (multipart) ---

func (h *GenerateHandler) PromptFromVideo(w http.ResponseWriter, r *http.Request) {
	video, ok := h.readUpload(w, r, "video")
	if !ok {
		return
	}
	apiKey := r.FormValue("api_key")
	h.metered(w, r, models.FeatureVideo, func(ctx context.Context) (any, error) {
		prompt, err := h.Gemini.DescribeVideo(ctx, video, apiKey)
		if err != nil {
			return nil, err
		}
		return map[string]string{"prompt": prompt}, nil
	})
}

// --- POST /api/generate/landing ---

type generateLandingRequest struct {
	Idea   string `json:"idea"`
	APIKey string `json:"api_key"`
}

func (h *GenerateHandler) GenerateLanding(w http.ResponseWriter, r *http.Request) {
	var req generateLandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Idea == "" {
		http.Error(w, `{"error":"idea required"}`, http.StatusBadRequest)
		return
	}
	h.metered(w, r, models.FeatureImage, func(ctx context.Context) (any, error) {
		html, err := h.Gemini.GenerateLandingPage(ctx, req.Idea, req.APIKey)
		if err != nil {
			return nil, err
		}
		return map[string]string{"html": html}, nil
	})
}

// --- POST /api/tryon (multipart) ---

func (h *GenerateHandler) TryOn(w http.ResponseWriter, r *http.Request) {
	person, ok := h.readUpload(w, r, "person")
	if !ok {
		return
	}
	clothes, ok := h.readUpload(w, r, "clothes")
	if !ok {
		return
	}
	description := r.FormValue("description")
	token := r.FormValue("hf_token")
	h.metered(w, r, models.FeatureImage, func(ctx context.Context) (any, error) {
		image, err := h.TryOnBackend.TryOn(ctx, person, clothes, description, token)
		if err != nil {
			return nil, err
		}
		return map[string]string{"image": base64.StdEncoding.EncodeToString(image)}, nil
	})
}

// --- POST /api/generate/video ---

type generateVideoRequest struct {
	Prompt  string `json:"prompt"`
	HFToken string `json:"hf_token"`
}

func (h *GenerateHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req generateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Prompt == "" {
		http.Error(w, `{"error":"prompt required"}`, http.StatusBadRequest)
		return
	}
	h.metered(w, r, models.FeatureVideo, func(ctx context.Context) (any, error) {
		video, err := h.Video.TextToVideo(ctx, req.Prompt, req.HFToken)
		if err != nil {
			return nil, err
		}
		return map[string]string{"video": base64.StdEncoding.EncodeToString(video)}, nil
	})
}

// readUpload pulls one file out of a size-capped multipart form. On failure
// it writes the error response and returns ok = false.
func (h *GenerateHandler) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	file, _, err := r.FormFile(field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("no %s uploaded", field)})
		return nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload"})
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
