/*
Package graph holds the knowledge-graph domain model and the three
operations every graph flows through: building from extraction output,
normalizing untrusted input, and reconciling a persisted graph against
the live agent roster.
*/
package graph

import "fmt"

// Version is the only graph schema version this design knows.
const Version = 1

const (
	maxLabelChars   = 64
	maxSummaryChars = 240
	maxFactChars    = 300
	maxTags         = 8
)

// Node is one entity in the graph. ID is unique within a graph;
// collisions are resolved by numeric suffixing at construction time,
// never by overwrite.
type Node struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Kind       string   `json:"kind"`
	Summary    string   `json:"summary,omitempty"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	X          float64  `json:"x,omitempty"`
	Y          float64  `json:"y,omitempty"`
}

// Edge is one relation. Source and Target must reference node ids
// present in the same graph; normalization drops edges that do not.
type Edge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
	Evidence string  `json:"evidence,omitempty"`
	Fact     string  `json:"fact,omitempty"`
}

// Meta records where a graph lives on disk.
type Meta struct {
	Workspace    string `json:"workspace"`
	GraphPath    string `json:"graphPath"`
	MarkdownPath string `json:"markdownPath"`
}

// KnowledgeGraph is the persisted aggregate. It is only ever mutated by
// passing through Normalize; loaded and client-submitted graphs are
// untrusted until they do.
type KnowledgeGraph struct {
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`
	Meta      Meta   `json:"meta"`
}

// Agent is the roster entry the builder and reconciler consume.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// defaultPosition spreads nodes on a deterministic grid from their
// insertion index, so graphs render stably without stored layout.
func defaultPosition(index int) (x, y float64) {
	col := index % 4
	row := index / 4
	return 160 + float64(col)*220, 120 + float64(row)*160
}

// uniqueID returns base if unused, otherwise base-2, base-3, … and
// marks the result as used.
func uniqueID(used map[string]struct{}, base string) string {
	if base == "" {
		base = "item"
	}
	id := base
	for n := 2; ; n++ {
		if _, taken := used[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = struct{}{}
	return id
}
