package httpcache

import (
	"errors"
	"net/http"
	"testing"
)

func TestURLToKey(t *testing.T) {
	k1 := URLToKey("https://leetcode.com/graphql|alice")
	k2 := URLToKey("https://leetcode.com/graphql|bob")

	if k1 == k2 {
		t.Error("URLToKey() produced identical keys for different inputs")
	}
	if len(k1) != 64 {
		t.Errorf("URLToKey() length = %d, want 64 hex chars", len(k1))
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"503", &HTTPError{StatusCode: http.StatusServiceUnavailable}, true},
		{"429", &HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{"404", &HTTPError{StatusCode: http.StatusNotFound}, false},
		{"403", &HTTPError{StatusCode: http.StatusForbidden}, false},
		{"network", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBrowserHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://leetcode.com/alice/", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}
	BrowserHeaders(req)

	if req.Header.Get("User-Agent") != UserAgent {
		t.Errorf("User-Agent = %q", req.Header.Get("User-Agent"))
	}
	if req.Header.Get("Accept-Language") == "" {
		t.Error("Accept-Language not set")
	}
}
