package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/pulsestack/pulse-sentinel/internal/models"
)

func TestFetchBatchCachesResults(t *testing.T) {
	hits := 0
	client := NewClient("https://collector.example.com", "/api/v1/heartbeats", time.Second, newStubCache(), time.Minute)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		hits++
		if req.URL.Path != "/api/v1/heartbeats" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `[{"service":"email","timestamp":"2025-08-04T10:00:00Z"}]`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(body))),
			Header:     make(http.Header),
		}, nil
	}))

	ctx := context.Background()
	records, err := client.FetchBatch(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one upstream request, got %d", hits)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected batch: %+v", records)
	}

	if _, err := client.FetchBatch(ctx); err != nil {
		t.Fatalf("unexpected cached error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("cache miss triggered network call; hits=%d", hits)
	}
}

func TestFetchBatchBadShape(t *testing.T) {
	client := NewClient("https://collector.example.com", "/api/v1/heartbeats", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader([]byte(`{"events": []}`))),
			Header:     make(http.Header),
		}, nil
	}))

	_, err := client.FetchBatch(context.Background())
	var shapeErr *models.InputShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected InputShapeError, got %v", err)
	}
}

func TestFetchBatchUpstreamFailure(t *testing.T) {
	client := NewClient("https://collector.example.com", "/api/v1/heartbeats", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     make(http.Header),
		}, nil
	}))

	if _, err := client.FetchBatch(context.Background()); err == nil {
		t.Fatalf("expected error on upstream failure")
	}
}

func TestFetchBatchUnconfigured(t *testing.T) {
	client := NewClient("", "/api/v1/heartbeats", time.Second, nil, 0)
	if _, err := client.FetchBatch(context.Background()); err == nil {
		t.Fatalf("expected error for unconfigured source")
	}
}
