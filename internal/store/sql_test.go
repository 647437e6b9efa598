package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		in     string
		want   string
	}{
		{"mysql untouched", "mysql", "SELECT 1 FROM t WHERE a = ? AND b = ?", "SELECT 1 FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", "postgres", "SELECT 1 FROM t WHERE a = ? AND b = ?", "SELECT 1 FROM t WHERE a = $1 AND b = $2"},
		{"postgres no placeholders", "postgres", "SELECT 1", "SELECT 1"},
		{"postgres in clause", "postgres", "WHERE id IN (?,?,?)", "WHERE id IN ($1,$2,$3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SQLStore{driver: tt.driver}
			if got := s.rebind(tt.in); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "?"},
		{3, "?,?,?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestParseLogTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"sql datetime", "2025-03-10 09:15:30", time.Date(2025, 3, 10, 9, 15, 30, 0, time.UTC), true},
		{"rfc3339", "2025-03-10T09:15:30Z", time.Date(2025, 3, 10, 9, 15, 30, 0, time.UTC), true},
		{"epoch seconds", "1741597200", time.Unix(1741597200, 0), true},
		{"fractional epoch", "1741597200.500000", time.Unix(1741597200, 500000000), true},
		{"padded", "  2025-03-10 09:15:30  ", time.Date(2025, 3, 10, 9, 15, 30, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-time", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLogTime(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseLogTime(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseLogTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompletionQueryShapes(t *testing.T) {
	// The two shapes must stay contract-equivalent: both restrict to
	// completion events, only exists pushes the CDR filter into SQL.
	twoPhase := &SQLStore{driver: "mysql", shape: ShapeTwoPhase}
	exists := &SQLStore{driver: "mysql", shape: ShapeExists}

	if twoPhase.Shape() != ShapeTwoPhase || exists.Shape() != ShapeExists {
		t.Fatal("Shape() must report the configured shape")
	}
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	if !strings.Contains(driverError(t), "unsupported DB driver") {
		t.Error("expected driver validation error")
	}
}

func driverError(t *testing.T) string {
	t.Helper()
	_, err := OpenSQL(context.Background(), SQLConfig{Driver: "sqlite"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	return err.Error()
}
