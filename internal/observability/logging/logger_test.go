package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"warn+2", slog.LevelWarn + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := parseLevel(tc.in); got != tc.want {
				t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewHonorsLevel(t *testing.T) {
	logger := New("api", "error")
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("warn should be disabled at error level")
	}
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Fatalf("error should be enabled at error level")
	}
}
