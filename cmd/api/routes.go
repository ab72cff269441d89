package main

import (
	"encoding/json"
	"net/http"

	"github.com/aihubtotal/backend/internal/auth"
	"github.com/aihubtotal/backend/internal/billing"
	"github.com/aihubtotal/backend/internal/handlers"
)

// RegisterRoutes adds all /api endpoints to the given mux.
// Middleware chain: JWTAuth on everything that touches an account; register,
// login and the two public GETs stay open.
func RegisterRoutes(
	mux *http.ServeMux,
	recaptchaSiteKey string,
	authMW func(http.Handler) http.Handler,
	authHandler *auth.Handler,
	billingHandler *billing.Handler,
	gen *handlers.GenerateHandler,
) {
	// Public
	mux.HandleFunc("GET /api/recaptcha-key", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"siteKey": recaptchaSiteKey})
	})
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/credits/packages", billingHandler.Packages)

	// Authenticated
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/credits/purchase", authMW(http.HandlerFunc(billingHandler.Purchase)))

	// Metered generation endpoints
	mux.Handle("POST /api/generate/image", authMW(http.HandlerFunc(gen.GenerateImage)))
	mux.Handle("POST /api/prompt/image", authMW(http.HandlerFunc(gen.PromptFromImage)))
	mux.Handle("POST /api/prompt/video", authMW(http.HandlerFunc(gen.PromptFromVideo)))
	mux.Handle("POST /api/generate/landing", authMW(http.HandlerFunc(gen.GenerateLanding)))
	mux.Handle("POST /api/tryon", authMW(http.HandlerFunc(gen.TryOn)))
	mux.Handle("POST /api/generate/video", authMW(http.HandlerFunc(gen.GenerateVideo)))
}
