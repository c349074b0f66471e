package console

import (
	"strings"
	"testing"
)

func TestBatchSummaryAnySucceeded(t *testing.T) {
	tests := []struct {
		name string
		s    BatchSummary
		want bool
	}{
		{"all failed", BatchSummary{Failed: 3}, false},
		{"one installed", BatchSummary{Installed: 1, Failed: 2}, true},
		{"one cached", BatchSummary{FromCache: 1}, true},
		{"one skipped local", BatchSummary{Skipped: 1}, true},
		{"empty batch", BatchSummary{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.AnySucceeded(); got != tt.want {
				t.Errorf("AnySucceeded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBatchSummaryRenderIncludesCounts(t *testing.T) {
	s := BatchSummary{Installed: 2, Failed: 1, Failures: []string{"not-a-real-pkg@1.0.0 (not found)"}}
	out := s.Render()
	if out == "" {
		t.Fatal("expected non-empty render")
	}
	if !strings.Contains(out, "3 package(s): 2 installed, 0 cached, 0 skipped, 1 failed") {
		t.Errorf("expected count banner in render, got %q", out)
	}
}
