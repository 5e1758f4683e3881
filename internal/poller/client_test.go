package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("X-Token = %q, want %q", got, "abc")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"version":"1.0.0"}`))
	}))
	defer server.Close()

	client := NewClient()
	defer client.Close()

	resp := client.Get(context.Background(), server.URL, map[string]string{"X-Token": "abc"}, time.Second)
	if err := resp.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if string(resp.Body) != `{"version":"1.0.0"}` {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestResponse_Err(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name    string
		resp    Response
		wantErr bool
	}{
		{name: "200", resp: Response{StatusCode: 200}},
		{name: "204", resp: Response{StatusCode: 204}},
		{name: "299", resp: Response{StatusCode: 299}},
		{name: "301", resp: Response{StatusCode: 301}, wantErr: true},
		{name: "404", resp: Response{StatusCode: 404}, wantErr: true},
		{name: "500", resp: Response{StatusCode: 500}, wantErr: true},
		{name: "no response", resp: Response{}, wantErr: true},
		{name: "transport error", resp: Response{Error: transportErr}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resp.Err()
			if (err != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := (Response{Error: transportErr}).Err(); !errors.Is(err, transportErr) {
		t.Errorf("Err() = %v, want transport error", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient()
	start := time.Now()
	resp := client.Get(context.Background(), server.URL, nil, 50*time.Millisecond)

	if resp.Err() == nil {
		t.Fatal("Err() = nil, want timeout error")
	}
	if !errors.Is(resp.Error, context.DeadlineExceeded) {
		t.Errorf("Error = %v, want context.DeadlineExceeded", resp.Error)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("request took %v, want it bounded by the timeout", elapsed)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := NewClient().Get(ctx, server.URL, nil, time.Second)
	if !errors.Is(resp.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", resp.Error)
	}
}

func TestClient_InvalidURL(t *testing.T) {
	resp := NewClient().Get(context.Background(), "://bad", nil, time.Second)
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Errorf("Error = %v, want request creation error", resp.Error)
	}
}

func TestClient_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", maxResponseBodySize+100)))
	}))
	defer server.Close()

	resp := NewClient().Get(context.Background(), server.URL, nil, 5*time.Second)
	if resp.Error != nil {
		t.Fatalf("Error = %v", resp.Error)
	}
	if len(resp.Body) != maxResponseBodySize {
		t.Errorf("len(Body) = %d, want %d", len(resp.Body), maxResponseBodySize)
	}
}

// TestClient_ConnectionReuse verifies keep-alive pooling across sequential probes.
func TestClient_ConnectionReuse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient()

	var reusedCount int
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reusedCount++
			}
		},
	}

	const numRequests = 5
	for i := 0; i < numRequests; i++ {
		ctx := httptrace.WithClientTrace(context.Background(), trace)
		if err := client.Get(ctx, server.URL, nil, 5*time.Second).Err(); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}

	if reusedCount < numRequests-2 {
		t.Errorf("expected at least %d reused connections, got %d", numRequests-2, reusedCount)
	}
}

func TestClient_Close(t *testing.T) {
	client := NewClient()
	client.Close()
	client.Close()

	var nilClient *Client
	nilClient.Close()
}
