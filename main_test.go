package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsResponse(t *testing.T, origins []string, development bool, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.New(corsConfig(origins, development)))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSWildcard(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		wantOrigin  string
		wantCreds   string
	}{
		{"development reflects the origin", true, "http://evil.test", "true"},
		{"production drops credentials", false, "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := corsResponse(t, []string{"*"}, tt.development, "http://evil.test")
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Fatalf("expected allow credentials %q, got %q", tt.wantCreds, got)
			}
		})
	}
}

func TestCORSExplicitOrigins(t *testing.T) {
	origins := []string{"https://app.foosilator.test"}

	w := corsResponse(t, origins, false, "https://app.foosilator.test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.foosilator.test" {
		t.Fatalf("expected the listed origin to be allowed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials for a listed origin, got %q", got)
	}

	w = corsResponse(t, origins, false, "http://evil.test")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected an unlisted origin to be refused, got %q", got)
	}
}
