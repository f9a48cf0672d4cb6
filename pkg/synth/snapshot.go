package synth

import (
	"fmt"
	"strings"

	"github.com/clawboard/clawboard/pkg/graph"
)

// Markers delimiting the snapshot region inside MEMORY.md. Everything
// between them belongs to this process; everything outside is the
// human's (or the agent's).
const (
	SnapshotStart = "<!-- KNOWLEDGE_GRAPH:START -->"
	SnapshotEnd   = "<!-- KNOWLEDGE_GRAPH:END -->"
)

const (
	snapshotNodeLimit = 12
	snapshotEdgeLimit = 20
)

/*
SnapshotSection renders the condensed graph block placed between the
markers: the top nodes by confidence and top edges by weight.
*/
func SnapshotSection(g *graph.KnowledgeGraph) string {
	var b strings.Builder

	b.WriteString("## Knowledge Graph Snapshot\n\n")
	if g.UpdatedAt != "" {
		fmt.Fprintf(&b, "_Synthesized %s._\n\n", g.UpdatedAt)
	}

	labels := labelIndex(g)

	for _, n := range topNodes(g, snapshotNodeLimit) {
		fmt.Fprintf(&b, "- **%s** (%s)", n.Label, n.Kind)
		if n.Summary != "" {
			b.WriteString(": " + n.Summary)
		}
		b.WriteString("\n")
	}

	edges := topEdges(g, snapshotEdgeLimit)
	if len(edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "- %s %s %s\n", labelFor(labels, e.Source), e.Relation, labelFor(labels, e.Target))
	}

	return strings.TrimRight(b.String(), "\n")
}

/*
UpsertSnapshot places section between the markers in document. When a
marker pair already exists its contents are replaced in place and every
byte outside the markers is preserved verbatim; otherwise the block is
appended at the end. Applying it twice leaves exactly one block.
*/
func UpsertSnapshot(document, section string) string {
	block := SnapshotStart + "\n" + section + "\n" + SnapshotEnd

	start := strings.Index(document, SnapshotStart)
	if start >= 0 {
		rest := document[start+len(SnapshotStart):]
		if offset := strings.Index(rest, SnapshotEnd); offset >= 0 {
			end := start + len(SnapshotStart) + offset + len(SnapshotEnd)
			return document[:start] + block + document[end:]
		}
	}

	if document == "" {
		return block + "\n"
	}
	if !strings.HasSuffix(document, "\n") {
		document += "\n"
	}
	return document + "\n" + block + "\n"
}
