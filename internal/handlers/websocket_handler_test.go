package handlers

import "testing"

func TestMatchOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		allowed string
		want    bool
	}{
		{"https://app.example.com", "https://app.example.com", true},
		{"https://app.example.com", "https://other.example.com", false},
		{"https://sub.example.com", "*.example.com", true},
		{"https://sub.example.com:8443", "*.example.com", true},
		{"https://example.com", "*.example.com", true},
		{"https://evil-example.com", "*.example.com", false},
		{"http://deep.sub.example.com", "*.example.com", true},
	}

	for _, tt := range tests {
		if got := matchOrigin(tt.origin, tt.allowed); got != tt.want {
			t.Errorf("matchOrigin(%q, %q) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}
