package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is Google's reCAPTCHA v2 verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks reCAPTCHA tokens. A failed or unreachable verification
// counts as not-verified; the gate fails closed.
type Verifier struct {
	secret   string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

func NewVerifier(secret, endpoint string, log *slog.Logger) *Verifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = slog.Default()
	}
	return &Verifier{
		secret:   secret,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log,
	}
}

type verifyResponse struct {
	Success bool `json:"success"`
}

// Verify reports whether token passes verification. Empty tokens never pass.
func (v *Verifier) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	form := url.Values{"secret": {v.secret}, "response": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn("recaptcha verification unreachable", "error", err)
		return false
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false
	}
	return out.Success
}
