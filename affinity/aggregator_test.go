package affinity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
)

type fixedJitter float64

func (f fixedJitter) Float64() float64 { return float64(f) }

func TestAggregator_Combine(t *testing.T) {
	tests := []struct {
		name    string
		rec     core.RatingRecord
		jitter  JitterSource
		want    float64
		wantErr bool
	}{
		{
			name:   "no jitter is the plain weighted sum",
			rec:    core.RatingRecord{UserID: "u1", PlaceID: "p1", General: "3", Food: "4", Service: "5"},
			jitter: NoJitter,
			want:   23.2,
		},
		{
			name:   "all fives",
			rec:    core.RatingRecord{UserID: "u1", PlaceID: "p1", General: "5", Food: "5", Service: "5"},
			jitter: NoJitter,
			want:   28.5,
		},
		{
			name:   "jitter is added once",
			rec:    core.RatingRecord{General: "1", Food: "1", Service: "1"},
			jitter: fixedJitter(0.25),
			want:   1.4 + 2.5 + 1.8 + 0.25,
		},
		{
			name:    "non numeric food",
			rec:     core.RatingRecord{General: "1", Food: "good", Service: "1"},
			jitter:  NoJitter,
			wantErr: true,
		},
		{
			name:    "empty service",
			rec:     core.RatingRecord{General: "1", Food: "1", Service: ""},
			jitter:  NoJitter,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Aggregator{Jitter: tt.jitter}
			got, err := a.Combine(tt.rec)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrMalformedRating))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAggregator_CombineFormulaAcrossInputs(t *testing.T) {
	a := &Aggregator{Jitter: NoJitter}
	for g := 0; g <= 2; g++ {
		for f := 0; f <= 2; f++ {
			for s := 0; s <= 2; s++ {
				rec := core.RatingRecord{
					General: string(rune('0' + g)),
					Food:    string(rune('0' + f)),
					Service: string(rune('0' + s)),
				}
				got, err := a.Combine(rec)
				require.NoError(t, err)
				want := float64(g)*1.4 + float64(f)*2.5 + float64(s)*1.8
				assert.InDelta(t, want, got, 1e-9)
			}
		}
	}
}

func TestAggregator_JitterRange(t *testing.T) {
	a := &Aggregator{Jitter: SeededJitter(42)}
	rec := core.RatingRecord{General: "0", Food: "0", Service: "0"}
	for i := 0; i < 1000; i++ {
		got, err := a.Combine(rec)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 1.0)
	}
}

func TestAggregator_SeededJitterIsReproducible(t *testing.T) {
	rows := []core.RatingRecord{
		{UserID: "u1", PlaceID: "p1", General: "1", Food: "2", Service: "0"},
		{UserID: "u1", PlaceID: "p2", General: "2", Food: "2", Service: "2"},
	}
	a1 := &Aggregator{Jitter: SeededJitter(7)}
	a2 := &Aggregator{Jitter: SeededJitter(7)}
	c1, err := a1.Aggregate(rows)
	require.NoError(t, err)
	c2, err := a2.Aggregate(rows)
	require.NoError(t, err)
	assert.Equal(t, c1.Ratings("u1", "p1"), c2.Ratings("u1", "p1"))
	assert.Equal(t, c1.Ratings("u1", "p2"), c2.Ratings("u1", "p2"))
}

func TestAggregator_AggregateGroupsInOrder(t *testing.T) {
	rows := []core.RatingRecord{
		{UserID: "u2", PlaceID: "p9", General: "1", Food: "1", Service: "1"},
		{UserID: "u1", PlaceID: "p1", General: "3", Food: "4", Service: "5"},
		{UserID: "u1", PlaceID: "p3", General: "0", Food: "0", Service: "0"},
		{UserID: "u1", PlaceID: "p1", General: "5", Food: "5", Service: "5"},
	}
	c, err := (&Aggregator{Jitter: NoJitter}).Aggregate(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"u2", "u1"}, c.Users())
	assert.Equal(t, []string{"p1", "p3"}, c.Places("u1"))
	got := c.Ratings("u1", "p1")
	require.Len(t, got, 2)
	assert.InDelta(t, 23.2, got[0], 1e-9)
	assert.InDelta(t, 28.5, got[1], 1e-9)
	assert.Equal(t, 4, c.Len())
}

func TestAggregator_AggregateAbortsOnBadRow(t *testing.T) {
	rows := []core.RatingRecord{
		{UserID: "u1", PlaceID: "p1", General: "1", Food: "1", Service: "1"},
		{UserID: "u1", PlaceID: "p2", General: "x", Food: "1", Service: "1"},
	}
	c, err := (&Aggregator{Jitter: NoJitter}).Aggregate(rows)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, core.ErrMalformedRating))
	assert.Contains(t, err.Error(), "rating row 2")
}
