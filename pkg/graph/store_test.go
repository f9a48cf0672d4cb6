package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	ws := t.TempDir()
	return NewStore(Meta{
		Workspace:    ws,
		GraphPath:    filepath.Join(ws, "memory", "knowledge-graph.json"),
		MarkdownPath: filepath.Join(ws, "memory", "knowledge-graph.md"),
	})
}

func TestStoreRoundTrip(t *testing.T) {
	store := tempStore(t)
	assert.False(t, store.Exists())

	g := NormalizeGraph(&KnowledgeGraph{
		Nodes: []Node{{ID: "a", Label: "A", Kind: "concept", Confidence: 0.7}},
	}, store.Meta())

	require.NoError(t, store.Save(g))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, loaded.Nodes)
	assert.Equal(t, Version, loaded.Version)
}

func TestStoreLoadIfExistsMissing(t *testing.T) {
	store := tempStore(t)

	g, err := store.LoadIfExists()
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestStoreLoadRepairsCorruptFile(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Meta().GraphPath), 0o755))
	require.NoError(t, os.WriteFile(store.Meta().GraphPath, []byte("{{{ not json"), 0o644))

	g, err := store.Load()
	require.NoError(t, err, "corrupt file must repair, not fail")
	assert.Empty(t, g.Nodes)
	assert.Equal(t, Version, g.Version)
}

func TestStoreSavePrettyPrints(t *testing.T) {
	store := tempStore(t)
	g := NormalizeGraph(&KnowledgeGraph{Nodes: []Node{{ID: "a", Label: "A"}}}, store.Meta())
	require.NoError(t, store.Save(g))

	data, err := os.ReadFile(store.Meta().GraphPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"nodes\"")
}
