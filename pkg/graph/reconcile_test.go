package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedFixture(t *testing.T) *KnowledgeGraph {
	t.Helper()
	return NormalizeGraph(&KnowledgeGraph{
		Nodes: []Node{
			{ID: RootID, Label: "Memory Core", Kind: "system", Confidence: 1, Source: "bootstrap"},
			{ID: "entity-a", Label: "Entity A", Kind: "concept", Confidence: 0.8, Summary: "User curated."},
		},
		Edges: []Edge{
			{ID: "e-root-a", Source: RootID, Target: "entity-a", Relation: "mentions", Weight: 0.8},
		},
	}, testMeta())
}

func TestReconcileAgentsInjectsMissingRosterNodes(t *testing.T) {
	persisted := persistedFixture(t)

	got := ReconcileAgents(persisted, []Agent{{ID: "ops", Name: "Ops"}}, testMeta())

	require.Len(t, got.Nodes, 3)
	require.Len(t, got.Edges, 2)

	var entityA *Node
	for i := range got.Nodes {
		if got.Nodes[i].ID == "entity-a" {
			entityA = &got.Nodes[i]
		}
	}
	require.NotNil(t, entityA, "existing node id must survive unchanged")
	assert.Equal(t, "User curated.", entityA.Summary)
	assert.Equal(t, 0.8, entityA.Confidence)

	var agentEdge *Edge
	for i := range got.Edges {
		if got.Edges[i].Relation == "managed_by" {
			agentEdge = &got.Edges[i]
		}
	}
	require.NotNil(t, agentEdge)
	assert.Equal(t, "agent-ops", agentEdge.Source)
	assert.Equal(t, RootID, agentEdge.Target)
}

func TestReconcileAgentsIsIdempotent(t *testing.T) {
	persisted := persistedFixture(t)
	roster := []Agent{{ID: "ops", Name: "Ops"}}

	once := ReconcileAgents(persisted, roster, testMeta())
	twice := ReconcileAgents(once, roster, testMeta())

	assert.Equal(t, once.Nodes, twice.Nodes)
	assert.Equal(t, once.Edges, twice.Edges)
}

func TestReconcileAgentsNeverPrunes(t *testing.T) {
	persisted := persistedFixture(t)
	withAgent := ReconcileAgents(persisted, []Agent{{ID: "ops", Name: "Ops"}}, testMeta())

	// Agent removed from the roster: its node stays.
	afterRemoval := ReconcileAgents(withAgent, nil, testMeta())
	assert.Len(t, afterRemoval.Nodes, len(withAgent.Nodes))
	assert.Len(t, afterRemoval.Edges, len(withAgent.Edges))
}

func TestReconcileAgentsOnNilGraph(t *testing.T) {
	got := ReconcileAgents(nil, []Agent{{ID: "ops", Name: "Ops"}}, testMeta())

	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "agent-ops", got.Nodes[0].ID)
	// The managed_by edge dangles without a root node and is dropped by
	// normalization.
	assert.Empty(t, got.Edges)
}
