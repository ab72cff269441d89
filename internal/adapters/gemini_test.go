package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "key=") {
			t.Error("request missing api key")
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			t.Error("request has no content parts")
		}
		w.Write([]byte(reply))
	}))
}

func candidateText(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(b)
}

func TestGenerateLandingPage_StripsCodeFence(t *testing.T) {
	srv := geminiServer(t, candidateText("```html\n<html><body>hi</body></html>\n```"))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "configured-key")
	html, err := c.GenerateLandingPage(context.Background(), "a bakery", "")
	if err != nil {
		t.Fatalf("GenerateLandingPage: %v", err)
	}
	if html != "<html><body>hi</body></html>" {
		t.Errorf("fence not stripped: %q", html)
	}
}

func TestGenerateLandingPage_BareFence(t *testing.T) {
	srv := geminiServer(t, candidateText("```\n<html></html>\n```"))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	html, err := c.GenerateLandingPage(context.Background(), "idea", "")
	if err != nil {
		t.Fatalf("GenerateLandingPage: %v", err)
	}
	if html != "<html></html>" {
		t.Errorf("bare fence not stripped: %q", html)
	}
}

func TestDescribeImage(t *testing.T) {
	srv := geminiServer(t, candidateText("a watercolor fox in a forest"))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "k")
	prompt, err := c.DescribeImage(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "")
	if err != nil {
		t.Fatalf("DescribeImage: %v", err)
	}
	if prompt != "a watercolor fox in a forest" {
		t.Errorf("prompt: %q", prompt)
	}
}

func TestGemini_NoKeyConfigured(t *testing.T) {
	c := NewGeminiClient("http://unused.invalid", "")
	_, err := c.GenerateLandingPage(context.Background(), "idea", "")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestGemini_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(srv.URL, "bad-key")
	_, err := c.GenerateLandingPage(context.Background(), "idea", "")
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected provider error surfaced, got %v", err)
	}
}

func TestTextToVideo_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient(srv.URL, "tok")
	_, err := c.TextToVideo(context.Background(), "a cat surfing", "")
	if err == nil || !strings.Contains(err.Error(), "Model is currently loading") {
		t.Fatalf("expected provider error surfaced, got %v", err)
	}
}

func TestTextToVideo_CallerTokenOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer caller-token" {
			t.Errorf("Authorization: got %q", got)
		}
		w.Write([]byte("video-bytes"))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient(srv.URL, "configured-token")
	data, err := c.TextToVideo(context.Background(), "prompt", "caller-token")
	if err != nil {
		t.Fatalf("TextToVideo: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("body: %q", data)
	}
}
