/*
Package extract turns one document at a time into entity/relation
candidates via an LLM chat completion. Output is best-effort and
schema-validated only: anything malformed is coerced or discarded, and a
failed document yields an empty result instead of aborting the batch.
*/
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/clawboard/clawboard/pkg/provider"
)

// maxDocumentChars bounds the content sent per completion call.
const maxDocumentChars = 8000

const defaultConfidence = 0.75

// allowedTypes is the entity-kind vocabulary the graph understands.
// Out-of-vocabulary types are corrected to "concept", not rejected, to
// stay resilient to model drift.
var allowedTypes = map[string]struct{}{
	"person": {}, "project": {}, "tool": {}, "concept": {}, "preference": {},
}

// Entity is one validated extraction subject.
type Entity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Summary    string  `json:"summary,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Relation is one validated subject–predicate–object triple.
type Relation struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Fact       string  `json:"fact"`
	Confidence float64 `json:"confidence"`
}

// Output is the validated result of extracting one document.
type Output struct {
	Entities  []Entity
	Relations []Relation
}

// Result pairs a document with its extraction outcome so callers can
// aggregate partial failures instead of losing them.
type Result struct {
	Document string
	Output   Output
	Err      error
}

type Extractor struct {
	prvdr provider.Interface
}

func New(prvdr provider.Interface) *Extractor {
	return &Extractor{prvdr: prvdr}
}

/*
ExtractDocument runs one completion over a document's content and
validates the response. Failures of any kind (network, timeout,
malformed JSON) are recorded on the Result and leave the Output empty.
*/
func (ex *Extractor) ExtractDocument(ctx context.Context, name, content string) Result {
	result := Result{Document: name}

	if strings.TrimSpace(content) == "" {
		return result
	}
	if len(content) > maxDocumentChars {
		content = content[:maxDocumentChars]
	}

	raw, err := ex.prvdr.CompleteJSON(ctx, systemPrompt, content)
	if err != nil {
		log.Debug("extraction call failed", "document", name, "error", err)
		result.Err = fmt.Errorf("extract %s: %w", name, err)
		return result
	}

	output, err := parseOutput(raw)
	if err != nil {
		log.Debug("extraction output rejected", "document", name, "error", err)
		result.Err = fmt.Errorf("extract %s: %w", name, err)
		return result
	}

	result.Output = output
	return result
}

/*
parseOutput validates the model's JSON against the expected shape.
Entities without a name and relations missing any leg of the triple are
dropped; everything else is coerced into range.
*/
func parseOutput(raw string) (Output, error) {
	var wire struct {
		Entities []struct {
			Name       string   `json:"name"`
			Type       string   `json:"type"`
			Summary    string   `json:"summary"`
			Confidence *float64 `json:"confidence"`
		} `json:"entities"`
		Relations []struct {
			Subject    string   `json:"subject"`
			Predicate  string   `json:"predicate"`
			Object     string   `json:"object"`
			Fact       string   `json:"fact"`
			Confidence *float64 `json:"confidence"`
		} `json:"relations"`
	}

	if err := json.Unmarshal([]byte(stripFences(raw)), &wire); err != nil {
		return Output{}, fmt.Errorf("malformed extraction JSON: %w", err)
	}

	var out Output
	for _, e := range wire.Entities {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(e.Type))
		if _, ok := allowedTypes[kind]; !ok {
			kind = "concept"
		}
		out.Entities = append(out.Entities, Entity{
			Name:       name,
			Type:       kind,
			Summary:    strings.TrimSpace(e.Summary),
			Confidence: clampConfidence(e.Confidence),
		})
	}

	for _, r := range wire.Relations {
		subject := strings.TrimSpace(r.Subject)
		predicate := strings.TrimSpace(r.Predicate)
		object := strings.TrimSpace(r.Object)
		if subject == "" || predicate == "" || object == "" {
			continue
		}
		fact := strings.TrimSpace(r.Fact)
		if fact == "" {
			fact = fmt.Sprintf("%s %s %s", subject, predicate, object)
		}
		out.Relations = append(out.Relations, Relation{
			Subject:    subject,
			Predicate:  predicate,
			Object:     object,
			Fact:       fact,
			Confidence: clampConfidence(r.Confidence),
		})
	}

	return out, nil
}

func clampConfidence(v *float64) float64 {
	if v == nil {
		return defaultConfidence
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

// stripFences tolerates models that wrap JSON in a markdown code fence
// despite the response-format instruction.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
