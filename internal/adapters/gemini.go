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

const (
	// DefaultGeminiEndpoint is the Generative Language REST API base.
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	geminiTextModel  = "gemini-2.0-flash"
	geminiImageModel = "gemini-2.0-flash-exp"

	generateTimeout = 120 * time.Second
)

// ErrNoAPIKey is returned when neither a configured nor a caller-supplied
// Google API key is available.
var ErrNoAPIKey = errors.New("google api key not configured")

// GeminiClient is a thin client for the Gemini generateContent endpoint.
// Every method accepts an optional caller-supplied key that overrides the
// configured one for that single call.
type GeminiClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewGeminiClient(endpoint, apiKey string) *GeminiClient {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	return &GeminiClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: generateTimeout},
	}
}

type geminiBlob struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"response_modalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generation_config,omitempty"`
}

type geminiResponsePart struct {
	Text       string `json:"text"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiResponsePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) generate(ctx context.Context, model, keyOverride string, payload geminiRequest) (*geminiResponse, error) {
	key := c.apiKey
	if keyOverride != "" {
		key = keyOverride
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("gemini: %s", out.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}
	return &out, nil
}

// GenerateImage produces PNG bytes for a text prompt.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt, apiKey string) ([]byte, error) {
	resp, err := c.generate(ctx, geminiImageModel, apiKey, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: "Generate an image: " + prompt},
		}}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	})
	if err != nil {
		return nil, err
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return base64.StdEncoding.DecodeString(part.InlineData.Data)
			}
		}
	}
	return nil, errors.New("no image generated")
}

const describeImagePrompt = `Analyze this image in detail and create an enhanced prompt for AI image generation. Include:
1. Main subject and composition
2. Art style and technique
3. Colors and lighting
4. Mood and atmosphere
5. Background and environment

Format as a single, detailed image generation prompt.`

// DescribeImage turns an uploaded image into a generation prompt.
func (c *GeminiClient) DescribeImage(ctx context.Context, image []byte, apiKey string) (string, error) {
	return c.describe(ctx, describeImagePrompt, image, http.DetectContentType(image), apiKey)
}

const describeVideoPrompt = `Analyze this video and create a detailed prompt for AI video generation. Include:
1. Main action/movement
2. Subject description
3. Visual style
4. Scene/environment
5. Mood and pacing

Format as a single video generation prompt.`

// DescribeVideo turns an uploaded video into a generation prompt. The video
// bytes are sent inline; Gemini samples frames server-side.
func (c *GeminiClient) DescribeVideo(ctx context.Context, video []byte, apiKey string) (string, error) {
	return c.describe(ctx, describeVideoPrompt, video, "video/mp4", apiKey)
}

func (c *GeminiClient) describe(ctx context.Context, prompt string, media []byte, mimeType, apiKey string) (string, error) {
	resp, err := c.generate(ctx, geminiTextModel, apiKey, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{
			{Text: prompt},
			{InlineData: &geminiBlob{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(media)}},
		}}},
	})
	if err != nil {
		return "", err
	}
	text := firstText(resp)
	if text == "" {
		return "", errors.New("no description generated")
	}
	return text, nil
}

// GenerateLandingPage produces a complete single-file HTML page for an idea.
func (c *GeminiClient) GenerateLandingPage(ctx context.Context, idea, apiKey string) (string, error) {
	prompt := fmt.Sprintf(`Create a complete, modern, responsive landing page for: %s

Requirements:
- Single HTML file with embedded CSS and JavaScript
- Modern, beautiful design with gradients and animations
- Fully responsive (mobile-first)
- Include hero section, features, CTA buttons
- Use modern CSS (flexbox, grid, custom properties)
- Smooth scroll and micro-interactions
- Professional typography (use Google Fonts)

Return ONLY the complete HTML code, no explanations.`, idea)

	resp, err := c.generate(ctx, geminiTextModel, apiKey, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	text := firstText(resp)
	if text == "" {
		return "", errors.New("no page generated")
	}
	return stripCodeFence(text), nil
}

func firstText(resp *geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// stripCodeFence unwraps ```html ... ``` (or bare ```) blocks the model
// tends to emit despite being told not to.
func stripCodeFence(text string) string {
	if i := strings.Index(text, "```html"); i >= 0 {
		text = text[i+len("```html"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	return strings.TrimSpace(text)
}
