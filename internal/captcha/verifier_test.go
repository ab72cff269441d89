package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostFormValue("secret") != "test-secret" {
			t.Errorf("secret: got %q", r.PostFormValue("secret"))
		}
		if r.PostFormValue("response") == "good-token" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	v := NewVerifier("test-secret", srv.URL, nil)
	ctx := context.Background()

	if !v.Verify(ctx, "good-token") {
		t.Error("expected good token to verify")
	}
	if v.Verify(ctx, "bad-token") {
		t.Error("expected bad token to fail")
	}
	if v.Verify(ctx, "") {
		t.Error("expected empty token to fail without a network call")
	}
}

func TestVerify_EndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // immediately: connection refused

	v := NewVerifier("test-secret", srv.URL, nil)
	if v.Verify(context.Background(), "token") {
		t.Error("unreachable endpoint must fail closed")
	}
}
