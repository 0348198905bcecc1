package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example")

	tests := []struct {
		target string
		want   string
	}{
		{"http://example.com/a", "http://proxy.local:3128"},
		{"https://generativelanguage.googleapis.com/v1beta", "http://secure-proxy.local:3128"},
		{"https://internal.example/x", ""},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(http.MethodGet, tt.target, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("proxy(%s) = %q, want %q", tt.target, gotStr, tt.want)
		}
	}
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	client := NewHTTPClient(7*time.Second, "", "", "")
	if client.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", client.Timeout)
	}
	if client.Transport == nil {
		t.Error("expected a transport")
	}
}
