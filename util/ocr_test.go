package util

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOCRClient_Recognize(t *testing.T) {
	var gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"result":" 8df3 "}`)
	}))
	defer srv.Close()

	c := NewOCRClient(srv.URL, NewHTTPClient(2*time.Second, ""))
	code, err := c.Recognize(context.Background(), "https://up.example/code.png")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if code != "8df3" {
		t.Fatalf("code = %q, want 8df3", code)
	}
	if !strings.Contains(gotBody, `"image_url":"https://up.example/code.png"`) {
		t.Fatalf("unexpected request body %s", gotBody)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q", gotContentType)
	}
}

func TestOCRClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOCRClient(srv.URL, NewHTTPClient(2*time.Second, ""))
	if _, err := c.Recognize(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 500")
	}
}
