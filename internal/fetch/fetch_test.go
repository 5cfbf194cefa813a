package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// silenceBackoff replaces the retry sleep for the duration of the test.
func silenceBackoff(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleepFunc
	sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleepFunc = orig })
	return &slept
}

func TestGet(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Fatalf("body = %q", body)
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("user agent = %q, want default", gotUA)
	}
}

func TestGetCustomUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := New(5*time.Second, "testbot/2.0")
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotUA != "testbot/2.0" {
		t.Fatalf("user agent = %q", gotUA)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	slept := silenceBackoff(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != "recovered" {
		t.Fatalf("body = %q", body)
	}
	if calls.Load() != 3 {
		t.Fatalf("server saw %d calls, want 3", calls.Load())
	}
	if want := []time.Duration{time.Second, 2 * time.Second}; len(*slept) != len(want) ||
		(*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Fatalf("backoff = %v, want %v", *slept, want)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	silenceBackoff(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("error = %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("server saw %d calls, want 3", calls.Load())
	}
}

func TestGetNoRetryOnClientError(t *testing.T) {
	silenceBackoff(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(5*time.Second, "")
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("error = %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("server saw %d calls, want 1", calls.Load())
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"fetch http://x: HTTP 503", true},
		{"fetch http://x: dial tcp: connection refused", true},
		{"fetch http://x: context deadline exceeded (Client.Timeout exceeded)", true},
		{"fetch http://x: dial tcp: lookup x: no such host", true},
		{"fetch http://x: HTTP 404", false},
		{"fetch http://x: HTTP 401", false},
	}
	for _, tc := range cases {
		if got := isRetryableError(errForTest(tc.msg)); got != tc.want {
			t.Errorf("isRetryableError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
	if isRetryableError(nil) {
		t.Error("nil error must not be retryable")
	}
}

type errForTest string

func (e errForTest) Error() string { return string(e) }
