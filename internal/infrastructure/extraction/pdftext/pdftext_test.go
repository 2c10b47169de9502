package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/errors"
)

func TestPages_Empty(t *testing.T) {
	t.Parallel()
	_, err := New(DefaultLayout()).Pages(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyDocument))
}

func TestPages_NotAPDF(t *testing.T) {
	t.Parallel()
	_, err := New(DefaultLayout()).Pages([]byte("this is not a pdf at all"))
	require.Error(t, err)
	assert.True(t, errors.IsAcquisition(err))
}

func TestWords_NotAPDF(t *testing.T) {
	t.Parallel()
	_, err := (&Extractor{}).Words([]byte("garbage"))
	assert.Error(t, err)
}

func TestProbe_NotAPDF(t *testing.T) {
	t.Parallel()
	_, err := Probe([]byte("garbage"))
	assert.Error(t, err)
}

func TestReconstruct_OrdersRowsAndInsertsSpaces(t *testing.T) {
	t.Parallel()
	runs := []Run{
		{X: 60, Y: 700, W: 20, S: "sheet"},
		{X: 10, Y: 700, W: 40, S: "steel"},
		{X: 10, Y: 680, W: 30, S: "claim"},
		{X: 44, Y: 680.5, W: 5, S: "1"},
	}
	got := DefaultLayout().reconstruct(runs)
	assert.Equal(t, "steel sheet\nclaim 1", got)
}

func TestReconstruct_AdjacentRunsJoin(t *testing.T) {
	t.Parallel()
	runs := []Run{
		{X: 10, Y: 100, W: 5, S: "W"},
		{X: 15, Y: 100, W: 5, S: "/"},
		{X: 20, Y: 100, W: 10, S: "kg"},
	}
	assert.Equal(t, "W/kg", DefaultLayout().reconstruct(runs))
}

func TestReconstruct_DriftingBaselinesIgnoreInputOrder(t *testing.T) {
	t.Parallel()
	a := Run{X: 10, Y: 100, W: 5, S: "a"}
	b := Run{X: 30, Y: 98.5, W: 5, S: "b"}
	c := Run{X: 10, Y: 97, W: 5, S: "c"}
	d := Run{X: 30, Y: 95.5, W: 5, S: "d"}

	tests := []struct {
		name string
		runs []Run
	}{
		{"top down", []Run{a, b, c, d}},
		{"bottom up", []Run{d, c, b, a}},
		{"interleaved", []Run{c, a, d, b}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, "a b\nc d", DefaultLayout().reconstruct(tc.runs))
		})
	}
}

func TestReconstruct_Empty(t *testing.T) {
	assert.Equal(t, "", DefaultLayout().reconstruct(nil))
}

//Personal.AI order the ending
