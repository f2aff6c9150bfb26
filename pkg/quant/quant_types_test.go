package quant

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyFactor(t *testing.T) {
	threshold := decimal.RequireFromString("0.95")
	step := decimal.RequireFromString("1.01")

	t.Run("Threshold", func(t *testing.T) {
		// 1000 * 0.95 = 950, exact
		if got := ApplyFactor(1000, threshold); got != 950 {
			t.Errorf("ApplyFactor(1000, 0.95) = %d, want 950", got)
		}
	})

	t.Run("Round Half Up", func(t *testing.T) {
		// 950 * 0.95 = 902.5 -> 903
		if got := ApplyFactor(950, threshold); got != 903 {
			t.Errorf("ApplyFactor(950, 0.95) = %d, want 903", got)
		}
	})

	t.Run("Raise Step", func(t *testing.T) {
		// 950 * 1.01 = 959.5 -> 960
		if got := ApplyFactor(950, step); got != 960 {
			t.Errorf("ApplyFactor(950, 1.01) = %d, want 960", got)
		}
	})

	t.Run("Zero Price", func(t *testing.T) {
		if got := ApplyFactor(0, step); got != 0 {
			t.Errorf("ApplyFactor(0, 1.01) = %d, want 0", got)
		}
	})
}

func TestParseFactor(t *testing.T) {
	if _, err := ParseFactor("0.95"); err != nil {
		t.Fatalf("ParseFactor(0.95) failed: %v", err)
	}
	if _, err := ParseFactor("not-a-number"); err == nil {
		t.Error("expected error for garbage input")
	}
	if _, err := ParseFactor("0"); err == nil {
		t.Error("expected error for zero factor")
	}
	if _, err := ParseFactor("-1.5"); err == nil {
		t.Error("expected error for negative factor")
	}
}

func TestParseCentsStr(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"250.00", 25000, false},
		{"$250.00", 25000, false},
		{"$9.5", 950, false},
		{"12", 1200, false},
		{"0.999", 99, false}, // sub-cent digits truncated
		{" $3.25 ", 325, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCentsStr(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCentsStr(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCentsStr(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCentsStr(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCentsString(t *testing.T) {
	if got := Cents(902).String(); got != "$9.02" {
		t.Errorf("Cents(902).String() = %q, want $9.02", got)
	}
	if got := Cents(25000).String(); got != "$250.00" {
		t.Errorf("Cents(25000).String() = %q, want $250.00", got)
	}
}

func TestMinShares(t *testing.T) {
	if MinShares(100, 50) != 50 || MinShares(30, 50) != 30 {
		t.Error("MinShares returned wrong value")
	}
}
