package media

import "testing"

func TestSanitizePixelFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"yuv420p", "yuv420p"},
		{"yuv420p(tv, bt709)", "yuv420p"},
		{"yuvj422p(pc, bt470bg/unknown/unknown)", "yuvj422p"},
		{"", ""},
		{"(odd)", ""},
	}
	for _, tt := range tests {
		if got := SanitizePixelFormat(tt.in); got != tt.want {
			t.Errorf("SanitizePixelFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMetadataSize(t *testing.T) {
	m := Metadata{Width: 1920, Height: 1080}
	if got := m.Size(); got != "1920x1080" {
		t.Errorf("Size() = %q, want 1920x1080", got)
	}
	if got := FrameSize(4, 2); got != 24 {
		t.Errorf("FrameSize(4, 2) = %d, want 24", got)
	}
}

func TestFormatFrameRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{25, "25.0"},
		{29.97, "29.97"},
		{30000.0 / 1001, "29.97002997002997"},
		{0, "0.0"},
		{0.5, "0.5"},
	}
	for _, tt := range tests {
		if got := FormatFrameRate(tt.rate); got != tt.want {
			t.Errorf("FormatFrameRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}
