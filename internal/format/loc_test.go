package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackLoc_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		page, slot int
	}{
		{"zero", 0, 0},
		{"first page last slot", 0, DefaultPageSize - 1},
		{"last page first slot", DefaultPageCount - 1, 0},
		{"max indices", MaxLocIndex, MaxLocIndex},
		{"mixed", 17, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := PackLoc(tt.page, tt.slot)
			require.True(t, ok)
			require.Equal(t, tt.page, l.Page())
			require.Equal(t, tt.slot, l.Slot())
		})
	}
}

func TestPackLoc_Layout(t *testing.T) {
	l, ok := PackLoc(3, 5)
	require.True(t, ok)
	require.Equal(t, Loc(3<<16|5), l)
	require.Equal(t, "3:5", l.String())
}

func TestPackLoc_OutOfRange(t *testing.T) {
	for _, in := range [][2]int{{-1, 0}, {0, -1}, {MaxLocIndex + 1, 0}, {0, MaxLocIndex + 1}} {
		_, ok := PackLoc(in[0], in[1])
		require.False(t, ok, "PackLoc(%d, %d)", in[0], in[1])
	}
	require.Panics(t, func() { MustPackLoc(0, MaxLocIndex+1) })
}
