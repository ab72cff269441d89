package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultHFEndpoint is the HuggingFace serverless inference API base.
	DefaultHFEndpoint = "https://api-inference.huggingface.co"

	// textToVideoModel matches the model the product ships with.
	textToVideoModel = "ali-vilab/text-to-video-ms-1.7b"

	hfTimeout = 300 * time.Second
)

// HuggingFaceClient calls the HF inference API for text-to-video.
type HuggingFaceClient struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHuggingFaceClient(endpoint, token string) *HuggingFaceClient {
	if endpoint == "" {
		endpoint = DefaultHFEndpoint
	}
	return &HuggingFaceClient{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: hfTimeout},
	}
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfError struct {
	Error string `json:"error"`
}

// TextToVideo renders prompt into raw video bytes. tokenOverride, when
// non-empty, replaces the configured token for this call.
func (c *HuggingFaceClient) TextToVideo(ctx context.Context, prompt, tokenOverride string) ([]byte, error) {
	body, err := json.Marshal(hfRequest{Inputs: prompt})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s", c.endpoint, textToVideoModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
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
		return nil, fmt.Errorf("huggingface request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("huggingface response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var he hfError
		if json.Unmarshal(data, &he) == nil && he.Error != "" {
			return nil, fmt.Errorf("huggingface: %s", he.Error)
		}
		return nil, fmt.Errorf("huggingface returned status %d", resp.StatusCode)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("video generation failed")
	}
	return data, nil
}
