package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
)

type appendNode struct {
	key string
	err error
}

func (n *appendNode) Name() string { return "test.append." + n.key }
func (n *appendNode) Kind() Kind   { return KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.Query, in []*core.Entry) ([]*core.Entry, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(in, core.NewEntry(n.key, 1)), nil
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{&appendNode{key: "a"}, &appendNode{key: "b"}}}
	out, err := p.Run(context.Background(), &core.Query{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Key)
	assert.Equal(t, "b", out[1].Key)
}

func TestPipeline_RunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{key: "a"}, &appendNode{key: "x", err: boom}}}
	_, err := p.Run(context.Background(), &core.Query{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test.append.x")
}

func TestPipeline_With(t *testing.T) {
	base := &Pipeline{Nodes: []Node{&appendNode{key: "a"}}}
	ext := base.With(&appendNode{key: "b"})
	assert.Len(t, base.Nodes, 1)
	assert.Len(t, ext.Nodes, 2)
}

func TestConfig_BuildPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  name: demo
  nodes:
    - type: append
      config:
        key: x
    - type: append
      config:
        key: y
`), 0o600))

	cfg, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Pipeline.Name)

	f := NewNodeFactory()
	f.Register("append", func(c map[string]any) (Node, error) {
		return &appendNode{key: c["key"].(string)}, nil
	})
	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)

	out, err := p.Run(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "y", out[1].Key)

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "missing"})
	_, err = cfg.BuildPipeline(f)
	assert.Error(t, err)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("pipeline: [unclosed"))
	assert.Error(t, err)

	_, err = LoadFromYAML(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
