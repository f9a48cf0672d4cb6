package graph

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/clawboard/clawboard/pkg/canon"
)

/*
RawGraph is the untrusted wire shape of a graph: a hand-edited file, a
client-submitted body, anything. Fields are raw JSON so a wrong-typed
section degrades to empty instead of failing the whole decode.
*/
type RawGraph struct {
	Version   json.RawMessage `json:"version"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
	Nodes     json.RawMessage `json:"nodes"`
	Edges     json.RawMessage `json:"edges"`
	Meta      json.RawMessage `json:"meta"`
}

// rawNode and rawEdge tolerate missing or mistyped scalar fields via
// pointer types; coercion happens in Normalize.
type rawNode struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Kind       string   `json:"kind"`
	Summary    string   `json:"summary"`
	Confidence *float64 `json:"confidence"`
	Source     string   `json:"source"`
	Tags       []string `json:"tags"`
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
}

type rawEdge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation string   `json:"relation"`
	Weight   *float64 `json:"weight"`
	Evidence string   `json:"evidence"`
	Fact     string   `json:"fact"`
}

/*
Normalize is the single choke point every graph passes through before
being trusted. It coerces the node and edge lists into shape, re-derives
deduplicated ids, clamps confidences and weights, truncates display
strings, drops edges that reference missing nodes, and stamps a fresh
UpdatedAt together with the fixed meta paths. It repairs rather than
rejects: no input makes it fail.
*/
func Normalize(raw RawGraph, meta Meta) *KnowledgeGraph {
	nodes := decodeList[rawNode](raw.Nodes)
	edges := decodeList[rawEdge](raw.Edges)

	g := &KnowledgeGraph{
		Version: Version,
		Meta:    meta,
	}

	// Maps the id a node arrived with to the id it survived with, so
	// edges written against the old ids still resolve.
	rewrite := map[string]string{}
	used := map[string]struct{}{}

	for i, n := range nodes {
		label := strings.TrimSpace(n.Label)
		if label == "" {
			label = strings.TrimSpace(n.ID)
		}
		if label == "" {
			label = "Untitled"
		}
		label = truncate(label, maxLabelChars)

		base := strings.TrimSpace(n.ID)
		if base == "" {
			base = canon.Slug(label)
		}
		id := uniqueID(used, canon.Slug(base))
		if incoming := strings.TrimSpace(n.ID); incoming != "" {
			if _, seen := rewrite[incoming]; !seen {
				rewrite[incoming] = id
			}
		}

		kind := strings.TrimSpace(n.Kind)
		if kind == "" {
			kind = "concept"
		}

		x, y := defaultPosition(i)
		if n.X != nil {
			x = *n.X
		}
		if n.Y != nil {
			y = *n.Y
		}

		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Label:      label,
			Kind:       kind,
			Summary:    truncate(strings.TrimSpace(n.Summary), maxSummaryChars),
			Confidence: clamp01(n.Confidence, 0.6),
			Source:     strings.TrimSpace(n.Source),
			Tags:       sanitizeTags(n.Tags),
			X:          x,
			Y:          y,
		})
	}

	nodeIDs := map[string]struct{}{}
	for _, n := range g.Nodes {
		nodeIDs[n.ID] = struct{}{}
	}

	resolve := func(ref string) (string, bool) {
		ref = strings.TrimSpace(ref)
		if _, ok := nodeIDs[ref]; ok {
			return ref, true
		}
		if mapped, ok := rewrite[ref]; ok {
			return mapped, true
		}
		return "", false
	}

	usedEdgeIDs := map[string]struct{}{}
	for _, e := range edges {
		source, okSource := resolve(e.Source)
		target, okTarget := resolve(e.Target)
		if !okSource || !okTarget {
			continue
		}

		relation := strings.TrimSpace(e.Relation)
		if relation == "" {
			relation = "related_to"
		}

		base := strings.TrimSpace(e.ID)
		if base == "" {
			base = "edge-" + canon.Slug(source+"-"+relation+"-"+target)
		}

		g.Edges = append(g.Edges, Edge{
			ID:       uniqueID(usedEdgeIDs, canon.Slug(base)),
			Source:   source,
			Target:   target,
			Relation: relation,
			Weight:   clamp01(e.Weight, 0.5),
			Evidence: strings.TrimSpace(e.Evidence),
			Fact:     truncate(strings.TrimSpace(e.Fact), maxFactChars),
		})
	}

	g.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return g
}

/*
NormalizeGraph runs an already-typed graph through the same pass.
Builder output and loaded files use this so every graph, trusted or not,
exits through one door.
*/
func NormalizeGraph(g *KnowledgeGraph, meta Meta) *KnowledgeGraph {
	if g == nil {
		return Normalize(RawGraph{}, meta)
	}
	nodes, _ := json.Marshal(g.Nodes)
	edges, _ := json.Marshal(g.Edges)
	return Normalize(RawGraph{Nodes: nodes, Edges: edges}, meta)
}

// decodeList unmarshals a raw JSON array element by element, skipping
// elements that do not decode. A non-array (or absent) value yields nil.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	out := make([]T, 0, len(elements))
	for _, el := range elements {
		var item T
		if err := json.Unmarshal(el, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

func clamp01(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	switch {
	case *v < 0:
		return 0
	case *v > 1:
		return 1
	default:
		return *v
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit])
}

func sanitizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, truncate(tag, 32))
		if len(out) == maxTags {
			break
		}
	}
	return out
}
