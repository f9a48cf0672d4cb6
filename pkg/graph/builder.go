package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/clawboard/clawboard/pkg/canon"
	"github.com/clawboard/clawboard/pkg/extract"
	"github.com/clawboard/clawboard/pkg/provider"
)

// RootID is the id of the memory-core node every built graph carries.
const RootID = "memory-core"

// Seed is one harvested document the builder may extract from.
type Seed struct {
	Name    string
	Content string
}

// BuildReport captures the bootstrap provenance the read endpoint
// surfaces: which documents contributed and which extractions failed.
type BuildReport struct {
	Files []string
	// ExtractionError is set when extraction as a whole was disabled,
	// specifically on a missing API key.
	ExtractionError string
	// Errors holds per-document extraction failures. They never abort
	// the build.
	Errors []error
}

/*
Build assembles a fresh graph from seed documents and the agent roster.
Extraction runs sequentially across documents: parallel calls would
multiply provider rate-limit and cost exposure on a path that only runs
at bootstrap. A nil extractor (no API key, provider misconfigured)
degrades to roster plus template content.
*/
func Build(ctx context.Context, ex *extract.Extractor, seeds []Seed, agents []Agent, meta Meta) (*KnowledgeGraph, *BuildReport) {
	report := &BuildReport{}

	g := &KnowledgeGraph{
		Version: Version,
		Meta:    meta,
	}

	usedIDs := map[string]struct{}{RootID: {}}
	g.Nodes = append(g.Nodes, Node{
		ID:         RootID,
		Label:      "Memory Core",
		Kind:       "system",
		Summary:    "Root of the synthesized memory graph.",
		Confidence: 1,
		Source:     "bootstrap",
	})

	// canonical entity name -> node id, shared across all documents so
	// repeated mentions collapse to one node.
	entityIDs := map[string]string{}

	if ex != nil {
		for _, seed := range seeds {
			result := ex.ExtractDocument(ctx, seed.Name, seed.Content)
			report.Files = append(report.Files, seed.Name)
			if result.Err != nil {
				report.Errors = append(report.Errors, result.Err)
				continue
			}
			mergeOutput(g, usedIDs, entityIDs, seed.Name, result.Output)
		}
	}

	appendAgents(g, usedIDs, agents)

	// Extraction produced nothing when the only nodes are the root and
	// the roster. Template content keeps the UI from rendering empty.
	if len(g.Nodes) <= 1+len(agents) {
		appendTemplate(g, usedIDs)
		log.Debug("graph build fell back to template", "agents", len(agents))
	}

	return g, report
}

// NoKeyReport marks a build whose extraction never ran for lack of a
// credential; the UI shows the reason as a banner.
func NoKeyReport(err error) string {
	if errors.Is(err, provider.ErrNoAPIKey) {
		return "no LLM API key configured; graph built without extraction"
	}
	return err.Error()
}

func mergeOutput(g *KnowledgeGraph, usedIDs map[string]struct{}, entityIDs map[string]string, source string, output extract.Output) {
	for _, entity := range output.Entities {
		key := canon.CanonicalEntityName(entity.Name)
		if key == "" {
			continue
		}
		if _, exists := entityIDs[key]; exists {
			continue
		}
		id := uniqueID(usedIDs, canon.Slug(entity.Name))
		entityIDs[key] = id
		g.Nodes = append(g.Nodes, Node{
			ID:         id,
			Label:      truncate(entity.Name, maxLabelChars),
			Kind:       entity.Type,
			Summary:    truncate(entity.Summary, maxSummaryChars),
			Confidence: entity.Confidence,
			Source:     source,
		})
	}

	usedEdgeIDs := map[string]struct{}{}
	for _, e := range g.Edges {
		usedEdgeIDs[e.ID] = struct{}{}
	}

	for _, rel := range output.Relations {
		sourceID, okSource := entityIDs[canon.CanonicalEntityName(rel.Subject)]
		targetID, okTarget := entityIDs[canon.CanonicalEntityName(rel.Object)]
		if !okSource || !okTarget || sourceID == targetID {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:       uniqueID(usedEdgeIDs, "edge-"+canon.Slug(rel.Subject+"-"+rel.Predicate+"-"+rel.Object)),
			Source:   sourceID,
			Target:   targetID,
			Relation: rel.Predicate,
			Weight:   rel.Confidence,
			Evidence: source,
			Fact:     truncate(rel.Fact, maxFactChars),
		})
	}
}

// AgentNodeID derives the stable node id for a roster agent.
func AgentNodeID(agent Agent) string {
	return "agent-" + canon.Slug(agent.ID)
}

// AgentEdgeID derives the stable id of an agent's managed_by edge.
func AgentEdgeID(agent Agent) string {
	return "edge-" + AgentNodeID(agent) + "-managed-by"
}

func agentNode(agent Agent) Node {
	label := agent.Name
	if strings.TrimSpace(label) == "" {
		label = agent.ID
	}
	return Node{
		ID:         AgentNodeID(agent),
		Label:      truncate(label, maxLabelChars),
		Kind:       "agent",
		Summary:    "Agent registered with the runtime.",
		Confidence: 1,
		Source:     "agents",
	}
}

func agentEdge(agent Agent) Edge {
	return Edge{
		ID:       AgentEdgeID(agent),
		Source:   AgentNodeID(agent),
		Target:   RootID,
		Relation: "managed_by",
		Weight:   0.9,
		Evidence: "agents",
	}
}

func appendAgents(g *KnowledgeGraph, usedIDs map[string]struct{}, agents []Agent) {
	for _, agent := range agents {
		node := agentNode(agent)
		if _, taken := usedIDs[node.ID]; taken {
			continue
		}
		usedIDs[node.ID] = struct{}{}
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, agentEdge(agent))
	}
}

// appendTemplate adds two illustrative nodes and edges so a graph built
// with no notes and no extraction still renders something meaningful.
func appendTemplate(g *KnowledgeGraph, usedIDs map[string]struct{}) {
	notes := Node{
		ID:         uniqueID(usedIDs, "markdown-notes"),
		Label:      "Markdown Notes",
		Kind:       "concept",
		Summary:    "Workspace notes feed this graph once they exist.",
		Confidence: 0.6,
		Source:     "template",
	}
	search := Node{
		ID:         uniqueID(usedIDs, "semantic-search"),
		Label:      "Semantic Search",
		Kind:       "tool",
		Summary:    "The memory index answers retrieval queries over the notes.",
		Confidence: 0.6,
		Source:     "template",
	}
	g.Nodes = append(g.Nodes, notes, search)
	g.Edges = append(g.Edges,
		Edge{
			ID:       "edge-" + notes.ID + "-feeds",
			Source:   notes.ID,
			Target:   RootID,
			Relation: "feeds",
			Weight:   0.6,
			Evidence: "template",
		},
		Edge{
			ID:       "edge-" + search.ID + "-indexes",
			Source:   search.ID,
			Target:   notes.ID,
			Relation: "indexes",
			Weight:   0.6,
			Evidence: "template",
		},
	)
}
