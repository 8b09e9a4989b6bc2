package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
)

func row(kv ...any) *core.Row {
	r := core.NewRow()
	for i := 0; i < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1].(float64))
	}
	return r
}

func sampleView() *core.Table {
	t := core.NewTable()
	t.EnsureRow("Ada").Set("Mexican", 51.7)
	t.EnsureRow("Ada").Set("Bar", 20.0)
	t.EnsureRow("Ada").Set("Cafe", 33.1)
	t.EnsureRow("Bob").Set("Cafe", 30.0)
	t.EnsureRow("Bob").Set("Mexican", 48.2)
	t.EnsureRow("Bob").Set("Bar", 12.5)
	t.EnsureRow("Cy").Set("Bar", 40.0)
	t.EnsureRow("Cy").Set("Pizza", 18.0)
	t.EnsureRow("Dee") // 没有评分
	return t
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b *core.Row
		want float64
	}{
		{name: "no shared keys", a: row("x", 1.0), b: row("y", 1.0), want: 0},
		{name: "empty rows", a: core.NewRow(), b: core.NewRow(), want: 0},
		{name: "identical", a: row("x", 1.0, "y", 5.0), b: row("y", 5.0, "x", 1.0), want: 1},
		{name: "3-4-5 triangle", a: row("x", 0.0, "y", 0.0), b: row("x", 3.0, "y", 4.0), want: 1.0 / 6.0},
		{name: "only shared keys count", a: row("x", 2.0, "z", 100.0), b: row("x", 2.0), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 1e-12)
		})
	}
}

func TestDistance_IdenticalIsExactlyOne(t *testing.T) {
	a := row("x", 51.7, "y", 12.3, "z", 0.1)
	b := row("x", 51.7, "y", 12.3, "z", 0.1)
	assert.Equal(t, 1.0, Distance(a, b))
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		a, b *core.Row
		want float64
	}{
		{name: "no shared keys", a: row("x", 1.0), b: row("y", 1.0), want: 0},
		{name: "single shared key", a: row("x", 1.0, "y", 2.0), b: row("x", 3.0), want: 0},
		{name: "zero variance", a: row("x", 2.0, "y", 2.0), b: row("x", 1.0, "y", 5.0), want: 0},
		{name: "identical", a: row("x", 1.0, "y", 2.0, "z", 4.0), b: row("x", 1.0, "y", 2.0, "z", 4.0), want: 1},
		{name: "scaled", a: row("x", 1.0, "y", 2.0, "z", 3.0), b: row("x", 10.0, "y", 20.0, "z", 30.0), want: 1},
		{name: "inverse", a: row("x", 1.0, "y", 2.0, "z", 3.0), b: row("x", 3.0, "y", 2.0, "z", 1.0), want: -1},
		{name: "uncorrelated", a: row("w", 1.0, "x", 2.0, "y", 3.0, "z", 4.0), b: row("w", 1.0, "x", 3.0, "y", 3.0, "z", 1.0), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Pearson(tt.a, tt.b), 1e-12)
		})
	}
}

func TestMetrics_Symmetric(t *testing.T) {
	view := sampleView()
	for _, m := range []Metric{EuclideanMetric, PearsonMetric} {
		for _, a := range view.Keys() {
			for _, b := range view.Keys() {
				ra, _ := view.Row(a)
				rb, _ := view.Row(b)
				assert.Equal(t, m.Func(ra, rb), m.Func(rb, ra), "%s(%s,%s)", m.Name, a, b)
			}
		}
	}
}

func TestDistance_Range(t *testing.T) {
	view := sampleView()
	for _, a := range view.Keys() {
		for _, b := range view.Keys() {
			ra, _ := view.Row(a)
			rb, _ := view.Row(b)
			got := Distance(ra, rb)
			if len(sharedKeys(ra, rb)) == 0 {
				assert.Equal(t, 0.0, got)
				continue
			}
			assert.Greater(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}

func TestPearson_Bounded(t *testing.T) {
	a := row("x", 1e-3, "y", 2e-3, "z", 3e-3)
	b := row("x", 2e-3, "y", 4e-3, "z", 6e-3)
	got := Pearson(a, b)
	assert.False(t, math.IsNaN(got))
	assert.LessOrEqual(t, got, 1.0)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euclidean", "Euclidean", " distance "} {
		m, err := ByName(name)
		require.NoError(t, err)
		assert.Equal(t, "euclidean", m.Name)
	}
	m, err := ByName("PEARSON")
	require.NoError(t, err)
	assert.Equal(t, "pearson", m.Name)

	_, err = ByName("cosine")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownMetric))
}
