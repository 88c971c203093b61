package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seetohjy/hdb-insights/internal/domain"
)

func TestClientCreateMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Fatalf("missing anthropic-version header")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[{"type":"text","text":"hello"}],"stop_reason":"end_turn","usage":{"input_tokens":5,"output_tokens":2}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)
	resp, err := client.CreateMessage(context.Background(), &MessageRequest{
		Model:     "m",
		MaxTokens: 100,
		Messages:  []domain.Message{domain.NewUserText("hi")},
	})
	if err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}
	if resp.StopReason != "end_turn" || len(resp.Content) != 1 || resp.Content[0].Text != "hello" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClientCreateMessageErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		body      string
		retryable bool
	}{
		{http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, true},
		{http.StatusInternalServerError, `{"type":"error","error":{"type":"api_error","message":"oops"}}`, true},
		{http.StatusServiceUnavailable, "overloaded", true},
		{http.StatusBadRequest, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, false},
		{http.StatusUnauthorized, "nope", false},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, tc.body)
		}))

		client := NewClient(server.URL, "", time.Second)
		_, err := client.CreateMessage(context.Background(), &MessageRequest{
			Model:     "m",
			MaxTokens: 100,
			Messages:  []domain.Message{domain.NewUserText("hi")},
		})
		server.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if got := IsRetryable(err); got != tc.retryable {
			t.Fatalf("status %d: expected retryable=%v, got %v (err: %v)", tc.status, tc.retryable, got, err)
		}
	}
}

func TestClientCreateMessageMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json")
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateMessage(context.Background(), &MessageRequest{
		Model:     "m",
		MaxTokens: 100,
		Messages:  []domain.Message{domain.NewUserText("hi")},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsRetryable(err) {
		t.Fatalf("malformed responses must not be retryable")
	}
}

func TestClientCreateMessageNetworkFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateMessage(context.Background(), &MessageRequest{
		Model:     "m",
		MaxTokens: 100,
		Messages:  []domain.Message{domain.NewUserText("hi")},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsRetryable(err) {
		t.Fatalf("network failures should be retryable, got %v", err)
	}
}

func TestIsRetryableNonServiceError(t *testing.T) {
	if IsRetryable(fmt.Errorf("plain error")) {
		t.Fatalf("plain errors must not be retryable")
	}
}
