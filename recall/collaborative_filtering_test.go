package recall

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/similarity"
)

// Ada 与 Bob 在共享菜系上完全一致；Cy 与 Ada 反向；Dee 没有评分。
func cfView() *core.Table {
	t := core.NewTable()
	t.EnsureRow("Ada").Set("A", 5)
	t.EnsureRow("Ada").Set("B", 3)
	t.EnsureRow("Bob").Set("A", 5)
	t.EnsureRow("Bob").Set("B", 3)
	t.EnsureRow("Bob").Set("C", 4)
	t.EnsureRow("Cy").Set("A", 1)
	t.EnsureRow("Cy").Set("B", 5)
	t.EnsureRow("Cy").Set("C", 2)
	t.EnsureRow("Cy").Set("D", 3)
	t.EnsureRow("Dee")
	return t
}

func keys(entries []*core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestRecommend_UserBasedEuclidean(t *testing.T) {
	got, err := Recommend(cfView(), "Ada", similarity.EuclideanMetric)
	require.NoError(t, err)

	s := 1 / (1 + math.Sqrt(20))
	require.Equal(t, []string{"C", "D"}, keys(got))
	assert.InDelta(t, (4+2*s)/(1+s), got[0].Score, 1e-12)
	assert.InDelta(t, 3.0, got[1].Score, 1e-12)
}

func TestRecommend_UserBasedPearsonSkipsNegative(t *testing.T) {
	got, err := Recommend(cfView(), "Ada", similarity.PearsonMetric)
	require.NoError(t, err)
	require.Equal(t, []string{"C"}, keys(got))
	assert.InDelta(t, 4.0, got[0].Score, 1e-12)
}

func TestRecommend_NeverReturnsRatedCuisine(t *testing.T) {
	view := cfView()
	for _, user := range view.Keys() {
		row, _ := view.Row(user)
		for _, m := range []similarity.Metric{similarity.EuclideanMetric, similarity.PearsonMetric} {
			got, err := Recommend(view, user, m)
			require.NoError(t, err)
			for _, e := range got {
				assert.False(t, row.Has(e.Key), "%s got already rated %s", user, e.Key)
			}
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
			}
		}
	}
}

func TestRecommend_EmptyUserGetsNothing(t *testing.T) {
	got, err := Recommend(cfView(), "Dee", similarity.EuclideanMetric)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommend_UnknownUser(t *testing.T) {
	_, err := Recommend(cfView(), "Nobody", similarity.EuclideanMetric)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEntityNotFound))
}

func TestRecommendItemBased(t *testing.T) {
	users := cfView()
	items := users.Transpose()

	got, err := RecommendItemBased(context.Background(), users, items, "Ada", similarity.EuclideanMetric, &similarity.Builder{Workers: 2})
	require.NoError(t, err)

	simAC := 1 / (1 + math.Sqrt(2))
	simBC := 1 / (1 + math.Sqrt(10))
	wantC := (5*simAC + 3*simBC) / (simAC + simBC)

	require.Equal(t, []string{"C", "D"}, keys(got))
	assert.InDelta(t, wantC, got[0].Score, 1e-12)
	assert.InDelta(t, 4.0, got[1].Score, 1e-12)

	_, err = RecommendItemBased(context.Background(), users, items, "Nobody", similarity.EuclideanMetric, &similarity.Builder{})
	assert.True(t, errors.Is(err, core.ErrEntityNotFound))

	got, err = RecommendItemBased(context.Background(), users, items, "Dee", similarity.EuclideanMetric, &similarity.Builder{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		in      string
		want    Model
		wantErr bool
	}{
		{in: "user-based", want: ModelUserBased},
		{in: "User-based", want: ModelUserBased},
		{in: " Item-Based ", want: ModelItemBased},
		{in: "user based", wantErr: true},
		{in: "item_based", wantErr: true},
		{in: "u2i", wantErr: true},
		{in: "content", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModel(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, core.ErrUnknownModel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "User Based", ModelUserBased.Title())
	assert.Equal(t, "Item Based", ModelItemBased.Title())
}

func TestRecommendNodes(t *testing.T) {
	users := cfView()
	items := users.Transpose()
	ctx := context.Background()

	for _, model := range []Model{ModelUserBased, ModelItemBased} {
		t.Run(string(model), func(t *testing.T) {
			node, err := NewRecommendNode(model, users, items, &similarity.Builder{})
			require.NoError(t, err)

			out, err := node.Process(ctx, &core.Query{Target: "Ada", Metric: "euclidean"}, nil)
			require.NoError(t, err)
			require.NotEmpty(t, out)
			assert.Equal(t, "euclidean", out[0].Labels["cf_metric"].Value)
			assert.Contains(t, []string{"u2i", "i2i"}, out[0].Labels["recall_source"].Value)

			_, err = node.Process(ctx, &core.Query{Target: "Ada", Metric: "cosine"}, nil)
			assert.True(t, errors.Is(err, core.ErrUnknownMetric))
		})
	}

	_, err := NewRecommendNode(Model("hybrid"), users, items, nil)
	assert.True(t, errors.Is(err, core.ErrUnknownModel))
}
