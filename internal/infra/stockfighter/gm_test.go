package stockfighter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGMClient(baseURL string) *GMClient {
	return &GMClient{
		baseURL:    baseURL,
		apiKey:     "test-key",
		instanceID: 7,
		httpClient: &http.Client{Timeout: 2 * time.Second},
	}
}

func TestGMClient_InstanceStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instances/7" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true, "done": false, "id": 7, "state": "open",
			"flash":   map[string]any{"info": "Your client would prefer to pay no more than $24.50 per share."},
			"details": map[string]any{"tradingDay": 3, "endOfTheWorldDay": 10},
		})
	}))
	defer server.Close()

	status, err := newTestGMClient(server.URL).InstanceStatus(context.Background())
	if err != nil {
		t.Fatalf("InstanceStatus failed: %v", err)
	}
	if status.Aborted() {
		t.Error("open instance should not read as aborted")
	}

	ceiling, ok := status.ClientsCeiling()
	if !ok {
		t.Fatal("expected a ceiling in the flash text")
	}
	if ceiling != 2450 {
		t.Errorf("ceiling = %d, want 2450", ceiling)
	}
}

func TestGMClient_AbortedInstance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true, "done": true, "id": 7, "state": "closed",
		})
	}))
	defer server.Close()

	status, err := newTestGMClient(server.URL).InstanceStatus(context.Background())
	if err != nil {
		t.Fatalf("InstanceStatus failed: %v", err)
	}
	if !status.Aborted() {
		t.Error("done instance must read as aborted")
	}
}

func TestInstanceStatus_ClientsCeiling(t *testing.T) {
	tests := []struct {
		name string
		info string
		want int64
		ok   bool
	}{
		{"Plain Amount", "Don't pay more than $9.50!", 950, true},
		{"Last Amount Wins", "Was $30.00, now the client wants $24.00 tops.", 2400, true},
		{"Whole Dollars", "Limit is $250", 25000, true},
		{"No Amount", "Keep up the good work.", 0, false},
		{"Empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s InstanceStatus
			s.Flash.Info = tt.info

			cents, ok := s.ClientsCeiling()
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && int64(cents) != tt.want {
				t.Errorf("ceiling = %d, want %d", cents, tt.want)
			}
		})
	}
}

func TestGMClient_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "no such instance"})
	}))
	defer server.Close()

	if _, err := newTestGMClient(server.URL).InstanceStatus(context.Background()); err == nil {
		t.Error("expected error for ok:false response")
	}
}
