// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value     string
		wantValid bool
	}{
		{"1", true},
		{"1.0", true},
		{"1.2.3.4", true},
		{"0.0.0.0", true},
		{"65535.1", true},
		{"", false},
		{"1.2.3.4.5", false},
		{"1..2", false},
		{"1.", false},
		{".1", false},
		{"-1", false},
		{"+1", false},
		{"1.a", false},
		{"65536", false},
		{" 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			v, err := Parse(tt.value)
			if (err == nil) != tt.wantValid {
				t.Fatalf("Parse(%q) error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("error does not wrap ErrInvalidVersion: %v", err)
				}
				return
			}
			if v.String() != tt.value {
				t.Errorf("String() = %q, want %q", v.String(), tt.value)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1", 0},
		{"1", "1.0.0", 0},
		{"1.0.1", "1.0", 1},
		{"9", "10", -1},
		{"1.2.3.4", "1.2.3.5", -1},
		{"18.0.1025", "17", 1},
	}

	for _, tt := range tests {
		if got := MustParse(tt.a).Compare(MustParse(tt.b)); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var v Version
	if v.IsValid() {
		t.Error("zero Version should not be valid")
	}
	if v.String() != "" {
		t.Errorf("String() = %q", v.String())
	}
}
