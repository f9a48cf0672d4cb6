package graph

/*
ReconcileAgents injects the roster-derived nodes and edges missing from
a persisted graph, then re-normalizes the union. The merge is
additive-only: nothing already in the graph is touched, including agent
nodes whose source agent has since left the roster. Pruning those would
risk destroying manual edits layered onto them, so it is deliberately
not done here.
*/
func ReconcileAgents(g *KnowledgeGraph, agents []Agent, meta Meta) *KnowledgeGraph {
	if g == nil {
		g = &KnowledgeGraph{Version: Version}
	}

	nodeIDs := map[string]struct{}{}
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = struct{}{}
	}
	edgeIDs := map[string]struct{}{}
	for _, e := range g.Edges {
		edgeIDs[e.ID] = struct{}{}
	}

	merged := *g
	merged.Nodes = append([]Node{}, g.Nodes...)
	merged.Edges = append([]Edge{}, g.Edges...)

	for _, agent := range agents {
		if _, have := nodeIDs[AgentNodeID(agent)]; !have {
			merged.Nodes = append(merged.Nodes, agentNode(agent))
		}
		if _, have := edgeIDs[AgentEdgeID(agent)]; !have {
			merged.Edges = append(merged.Edges, agentEdge(agent))
		}
	}

	return NormalizeGraph(&merged, meta)
}
