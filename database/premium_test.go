package database

import (
	"testing"
	"time"
)

func TestParsePremiumDuration(t *testing.T) {
	tests := []struct {
		spec string
		want time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"6h", 6 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"2mo", 60 * 24 * time.Hour},
		{"1y", 365 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := ParsePremiumDuration(tt.spec)
		if err != nil {
			t.Errorf("ParsePremiumDuration(%q) failed: %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePremiumDuration(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestParsePremiumDurationRejectsGarbage(t *testing.T) {
	for _, spec := range []string{"", "30", "d30", "30x", "-5d", "30 d", "30dd"} {
		if _, err := ParsePremiumDuration(spec); err == nil {
			t.Errorf("ParsePremiumDuration(%q) accepted invalid spec", spec)
		}
	}
}
