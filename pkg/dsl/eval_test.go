package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
)

func TestProgram_Evaluate(t *testing.T) {
	entry := core.NewEntry("Bar_Pub_Brewery", 42.5)
	entry.PutLabel("cf_metric", core.Label{Value: "pearson", Source: "recall"})
	q := &core.Query{Target: "Ada", Metric: "pearson", Model: "user-based", Limit: 5}

	tests := []struct {
		expr string
		want bool
	}{
		{expr: `entry.score > 40.0`, want: true},
		{expr: `entry.score > 50.0`, want: false},
		{expr: `entry.key.startsWith("Bar")`, want: true},
		{expr: `label.cf_metric == "pearson" && entry.score >= 42.5`, want: true},
		{expr: `!(entry.key in ["Bar_Pub_Brewery", "Cafeteria"])`, want: false},
		{expr: `rctx.target == "Ada" && rctx.limit == 5`, want: true},
		{expr: `"recall_source" in entry.labels`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := p.Evaluate(entry, q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expr, p.String())
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{`entry.score >`, `1 + 2`, `"text"`} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}

func TestProgram_EvaluateMissingLabel(t *testing.T) {
	p, err := Compile(`label.nope == "x"`)
	require.NoError(t, err)
	_, err = p.Evaluate(core.NewEntry("a", 1), nil)
	assert.Error(t, err)
}
