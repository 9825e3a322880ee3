package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		page, perPage, total int
		wantPages            int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{2, 10, 11, 2},
		{1, 100, 250, 3},
	}
	for _, tc := range cases {
		p := NewPagination(tc.page, tc.perPage, tc.total)
		if p.TotalPages != tc.wantPages || p.TotalItems != tc.total || p.Page != tc.page {
			t.Errorf("NewPagination(%d, %d, %d) = %+v", tc.page, tc.perPage, tc.total, p)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Fail(c, http.StatusTeapot, ErrNotFound) })

	t.Run("reuses well-formed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "trace-42.a_b")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if got := w.Header().Get(HeaderRequestID); got != "trace-42.a_b" {
			t.Fatalf("header = %q", got)
		}
		var body Response
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Metadata.RequestID != "trace-42.a_b" || body.Error == nil || body.Error.Code != ErrNotFound {
			t.Fatalf("body = %s", w.Body.String())
		}
	})

	t.Run("replaces unsafe id", func(t *testing.T) {
		for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("a", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, bad)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if got == bad || got == "" {
				t.Fatalf("unsafe id %q echoed as %q", bad, got)
			}
		}
	})
}
