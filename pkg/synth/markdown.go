/*
Package synth renders a knowledge graph back into markdown: the full
mirror document regenerated on every save, and the marker-delimited
snapshot block folded into the agent's living MEMORY.md.
*/
package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clawboard/clawboard/pkg/graph"
)

/*
ToMarkdown renders the full mirror document. It is a pure function of
the graph: same graph in, same document out.
*/
func ToMarkdown(g *graph.KnowledgeGraph) string {
	var b strings.Builder

	b.WriteString("# Knowledge Graph Memory\n\n")
	if g.UpdatedAt != "" {
		fmt.Fprintf(&b, "Updated: %s\n\n", g.UpdatedAt)
	}

	b.WriteString("## Entities\n\n")
	if len(g.Nodes) == 0 {
		b.WriteString("_None._\n")
	}
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "- **%s** (`%s`, confidence %.2f)", n.Label, n.Kind, n.Confidence)
		if n.Summary != "" {
			b.WriteString(" — " + n.Summary)
		}
		if n.Source != "" {
			fmt.Fprintf(&b, " _[%s]_", n.Source)
		}
		b.WriteString("\n")
	}

	labels := labelIndex(g)

	b.WriteString("\n## Relations\n\n")
	if len(g.Edges) == 0 {
		b.WriteString("_None._\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "- %s -[%s]-> %s (weight %.2f)",
			labelFor(labels, e.Source), e.Relation, labelFor(labels, e.Target), e.Weight)
		if e.Evidence != "" {
			fmt.Fprintf(&b, " _[%s]_", e.Evidence)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Retrieval Triples\n\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "- %s | %s | %s", labelFor(labels, e.Source), e.Relation, labelFor(labels, e.Target))
		if e.Fact != "" {
			b.WriteString(" — " + e.Fact)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// labelIndex maps node ids to display labels. Callers render the id
// itself for references the caller has not normalized.
func labelIndex(g *graph.KnowledgeGraph) map[string]string {
	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}
	return labels
}

func labelFor(labels map[string]string, id string) string {
	if label, ok := labels[id]; ok {
		return label
	}
	return id
}

// topNodes returns up to limit nodes ordered by confidence descending,
// stable so equal-confidence nodes keep their graph order.
func topNodes(g *graph.KnowledgeGraph, limit int) []graph.Node {
	nodes := append([]graph.Node{}, g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Confidence > nodes[j].Confidence
	})
	if len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

func topEdges(g *graph.KnowledgeGraph, limit int) []graph.Edge {
	edges := append([]graph.Edge{}, g.Edges...)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight > edges[j].Weight
	})
	if len(edges) > limit {
		edges = edges[:limit]
	}
	return edges
}
