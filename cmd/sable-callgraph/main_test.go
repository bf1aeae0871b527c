package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateLabel(t *testing.T) {
	for _, tt := range []struct {
		name  string
		label string
		avail int
		want  string
	}{
		{"fits", "Base.f()", 20, "Base.f()"},
		{"exact", "Base.f()", 8, "Base.f()"},
		{"truncated", "Registry.transferOwnership()", 10, "Registry.…"},
		{"single column", "Base.f()", 1, "…"},
		{"no room", "Base.f()", 0, "Base.f()"},
		{"multibyte", "Überweisung.führeAus()", 12, "Überweisung…"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, truncateLabel(tt.label, tt.avail))
		})
	}
}
