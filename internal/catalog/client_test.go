package catalog

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"orgtree/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testClient(rt roundTripFunc) *Client {
	client := NewClient(config.Config{
		FetchToken:        "test",
		FetchRateLimitRPS: 1000,
		FetchMaxAttempts:  3,
		FetchTimeoutMs:    1000,
	}, nil)
	client.httpClient = &http.Client{Transport: rt}
	client.sleep = func(time.Duration) {}
	return client
}

func response(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: h}
}

func TestFetchDumpRetries(t *testing.T) {
	attempt := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempt++
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("authorization=%q", got)
		}
		if r.URL.Path != "/dumps/org.json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if attempt == 1 {
			return response(http.StatusServiceUnavailable, "", `{"error":"busy"}`), nil
		}
		return response(http.StatusOK, "application/json", `{"Design": {}}`), nil
	})

	body, contentType, err := client.FetchDump(context.Background(), "https://example.test/dumps/org.json")
	if err != nil {
		t.Fatal(err)
	}
	if attempt != 2 {
		t.Fatalf("attempts=%d", attempt)
	}
	if string(body) != `{"Design": {}}` || contentType != "application/json" {
		t.Fatalf("body=%s contentType=%s", body, contentType)
	}
}

func TestFetchDumpDoesNotRetryClientErrors(t *testing.T) {
	attempt := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempt++
		return response(http.StatusNotFound, "", "missing"), nil
	})

	_, _, err := client.FetchDump(context.Background(), "https://example.test/none")
	if err == nil || !strings.Contains(err.Error(), "status=404") {
		t.Fatalf("err=%v", err)
	}
	if attempt != 1 {
		t.Fatalf("attempts=%d", attempt)
	}
}

func TestFetchDumpGivesUp(t *testing.T) {
	attempt := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempt++
		return response(http.StatusBadGateway, "", "bad gateway"), nil
	})

	if _, _, err := client.FetchDump(context.Background(), "https://example.test/dump"); err == nil {
		t.Fatal("expected error")
	}
	if attempt != 3 {
		t.Fatalf("attempts=%d", attempt)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
