package frame

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(min int) time.Time {
	return time.Date(2016, 6, 1, 0, min, 0, 0, time.UTC)
}

func TestDedup_KeepFirst(t *testing.T) {
	f := New(
		Row{Time: ts(0), Device: "T1", Values: map[string]float64{"v": 1}},
		Row{Time: ts(0), Device: "T1", Values: map[string]float64{"v": 2}},
		Row{Time: ts(10), Device: "T1", Values: map[string]float64{"v": 3}},
	)

	removed := f.Dedup(KeepFirst)

	assert.Equal(t, 1, removed)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, 1.0, f.Rows()[0].Values["v"])
	assert.Equal(t, 3.0, f.Rows()[1].Values["v"])
}

func TestDedup_KeepFirst_DeviceDifferentiates(t *testing.T) {
	f := New(
		Row{Time: ts(0), Device: "T1", Values: map[string]float64{"v": 1}},
		Row{Time: ts(0), Device: "T2", Values: map[string]float64{"v": 2}},
	)

	removed := f.Dedup(KeepFirst)

	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, f.Len())
}

func TestDedup_DropAll(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"v": 1}},
		Row{Time: ts(0), Values: map[string]float64{"v": 2}},
		Row{Time: ts(10), Values: map[string]float64{"v": 3}},
	)

	removed := f.Dedup(DropAll)

	assert.Equal(t, 2, removed)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, 3.0, f.Rows()[0].Values["v"])
}

func TestSortByTime_StableTies(t *testing.T) {
	f := New(
		Row{Time: ts(10), Device: "T2", Values: map[string]float64{"v": 1}},
		Row{Time: ts(0), Device: "T1", Values: map[string]float64{"v": 2}},
		Row{Time: ts(10), Device: "T1", Values: map[string]float64{"v": 3}},
	)

	f.SortByTime()

	require.Equal(t, 3, f.Len())
	assert.Equal(t, "T1", f.Rows()[0].Device)
	// Tie at ts(10): T2 appeared before T1 in input, order preserved.
	assert.Equal(t, "T2", f.Rows()[1].Device)
	assert.Equal(t, "T1", f.Rows()[2].Device)
}

func TestColumn_MissingIsNaN(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"v": 1}},
		Row{Time: ts(10), Values: map[string]float64{}},
	)

	col := f.Column("v")

	require.Len(t, col, 2)
	assert.Equal(t, 1.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
}

func TestSetColumn(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"v": 1}},
		Row{Time: ts(10), Values: map[string]float64{"v": 2}},
	)

	f.SetColumn("v", []float64{5, math.NaN()})

	assert.Equal(t, 5.0, f.Rows()[0].Values["v"])
	assert.True(t, math.IsNaN(f.Rows()[1].Values["v"]))
}

func TestKeep(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"v": 1}},
		Row{Time: ts(10), Values: map[string]float64{"v": 2}},
		Row{Time: ts(20), Values: map[string]float64{"v": 3}},
	)

	removed := f.Keep([]bool{true, false, true})

	assert.Equal(t, 1, removed)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, 3.0, f.Rows()[1].Values["v"])
}

func TestDropNaN_AllColumns(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"a": 1, "b": 2}},
		Row{Time: ts(10), Values: map[string]float64{"a": 1, "b": math.NaN()}},
	)

	removed := f.DropNaN()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, f.Len())
}

func TestDropNaN_NamedColumns(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"a": math.NaN(), "b": 2}},
		Row{Time: ts(10), Values: map[string]float64{"a": 1, "b": math.NaN()}},
	)

	removed := f.DropNaN("b")

	assert.Equal(t, 1, removed)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, 2.0, f.Rows()[0].Values["b"])
}

func TestRename(t *testing.T) {
	f := New(Row{Time: ts(0), Values: map[string]float64{"wmet_wDir_avg": 180, "v": 1}})

	f.Rename(map[string]string{"wmet_wDir_avg": "wmet_HorWd_Dir"})

	vals := f.Rows()[0].Values
	assert.Contains(t, vals, "wmet_HorWd_Dir")
	assert.NotContains(t, vals, "wmet_wDir_avg")
	assert.Contains(t, vals, "v")
}

func TestTimeRange(t *testing.T) {
	f := New(
		Row{Time: ts(20)},
		Row{Time: ts(0)},
		Row{Time: ts(10)},
	)

	tr, ok := f.TimeRange()

	require.True(t, ok)
	assert.Equal(t, ts(0), tr.Start)
	assert.Equal(t, ts(20), tr.End)

	_, ok = New().TimeRange()
	assert.False(t, ok)
}

func TestColumns(t *testing.T) {
	f := New(
		Row{Time: ts(0), Values: map[string]float64{"b": 1}},
		Row{Time: ts(10), Values: map[string]float64{"a": 1}},
	)

	assert.Equal(t, []string{"a", "b"}, f.Columns())
}
