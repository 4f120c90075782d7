//go:build !integration

package parser

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPParser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		switch hdr.Filename {
		case "cv.pdf":
			_, _ = w.Write([]byte(`{"markdown":"# ` + string(b) + `"}`))
		case "empty.pdf":
			_, _ = w.Write([]byte(`{"markdown":"  "}`))
		default:
			http.Error(w, "unsupported", http.StatusUnprocessableEntity)
		}
	}))
	defer srv.Close()

	p, err := NewHTTPParser(srv.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	got, err := p.Parse(ctx, "cv.pdf", []byte("Sam"))
	if err != nil || got != "# Sam" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := p.Parse(ctx, "empty.pdf", []byte("x")); err == nil {
		t.Fatal("blank output should be an error")
	}
	if _, err := p.Parse(ctx, "cv.exe", []byte("x")); err == nil {
		t.Fatal("non-2xx should be an error")
	}
}
