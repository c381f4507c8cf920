package main

import "testing"

func TestPreviewBytes(t *testing.T) {
	data := []byte("NOTIFY * HTTP/1.1")
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"shorter", 6, "NOTIFY"},
		{"longer than data", 100, "NOTIFY * HTTP/1.1"},
		{"zero", 0, ""},
		{"negative", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewBytes(data, tt.n); string(got) != tt.want {
				t.Errorf("previewBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}
