package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const tryonTimeout = 300 * time.Second

// TryOnClient calls a hosted IDM-VTON predict endpoint: person photo plus a
// garment photo in, composited try-on image out.
type TryOnClient struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewTryOnClient(endpoint, token string) *TryOnClient {
	return &TryOnClient{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: tryonTimeout},
	}
}

type tryonRequest struct {
	Data []string `json:"data"`
}

type tryonResponse struct {
	Data  []string `json:"data"`
	Error string   `json:"error"`
}

// TryOn composites the garment onto the person. Images travel as data URIs;
// the result comes back the same way.
func (c *TryOnClient) TryOn(ctx context.Context, person, garment []byte, description, tokenOverride string) ([]byte, error) {
	if c.endpoint == "" {
		return nil, errors.New("try-on endpoint not configured")
	}
	if description == "" {
		description = "A piece of clothing"
	}

	body, err := json.Marshal(tryonRequest{Data: []string{
		toDataURI(person),
		toDataURI(garment),
		description,
	}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	token := c.token
	if tokenOverride != "" {
		token = tokenOverride
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("try-on request: %w", err)
	}
	defer resp.Body.Close()

	var out tryonResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("try-on response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("try-on: %s", out.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(out.Data) == 0 {
		return nil, errors.New("virtual try-on failed")
	}
	return fromDataURI(out.Data[0])
}

func toDataURI(image []byte) string {
	return "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func fromDataURI(uri string) ([]byte, error) {
	if i := strings.Index(uri, ";base64,"); i >= 0 {
		uri = uri[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(uri)
}
