/*
Package evidence derives topic-scoped chunks and declarative facts from
raw markdown. The output feeds two consumers: LLM input truncation and
the dashboard's evidence panel. It deliberately works line by line
instead of parsing a markdown AST because every chunk must carry the
1-based line range it came from.
*/
package evidence

import (
	"regexp"
	"strings"

	"github.com/clawboard/clawboard/pkg/canon"
)

// DefaultMaxChunks bounds chunk emission per document. Fact scanning is
// not bounded by it.
const DefaultMaxChunks = 140

const maxChunkText = 280

// Chunk is one heading, bullet or paragraph unit of a source document.
type Chunk struct {
	Topic     string `json:"topic"`
	Kind      string `json:"kind"` // "heading", "bullet" or "paragraph"
	Text      string `json:"text"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// Fact is a bullet or key-value line promoted to a declarative
// statement. Canonical is the dedup key (topic::canonical form).
type Fact struct {
	Topic      string  `json:"topic"`
	Statement  string  `json:"statement"`
	Canonical  string  `json:"canonical"`
	Confidence float64 `json:"confidence"`
	Line       int     `json:"line"`
}

var (
	headingPattern  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern   = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`)
	keyValuePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 /_.-]{0,39}):\s+(.+)$`)
)

/*
Extract walks text line by line and returns ordered chunks plus
deduplicated facts. The running topic is set by the last-seen heading
and defaults to "General". Once maxChunks chunks have been emitted no
further chunks are added, but fact scanning continues to the end of the
document so every distinct fact still surfaces. A maxChunks of zero or
less falls back to DefaultMaxChunks.
*/
func Extract(text string, maxChunks int) ([]Chunk, []Fact) {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	var (
		chunks []Chunk
		facts  []Fact
		seen   = map[string]struct{}{}
		topic  = "General"
	)

	addChunk := func(kind, body string, line int) {
		if len(chunks) >= maxChunks {
			return
		}
		if len(body) > maxChunkText {
			body = strings.TrimSpace(body[:maxChunkText])
		}
		chunks = append(chunks, Chunk{
			Topic:     topic,
			Kind:      kind,
			Text:      body,
			StartLine: line,
			EndLine:   line,
		})
	}

	addFact := func(statement string, confidence float64, line int) {
		key := topic + "::" + canon.CanonicalizeFact(statement)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		facts = append(facts, Fact{
			Topic:      topic,
			Statement:  statement,
			Canonical:  key,
			Confidence: confidence,
			Line:       line,
		})
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			heading := canon.CleanInline(m[2])
			if heading != "" {
				topic = heading
			}
			addChunk("heading", heading, lineNo)
			continue
		}

		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			body := canon.CleanInline(m[1])
			if body == "" {
				continue
			}
			addChunk("bullet", body, lineNo)
			addFact(body, 0.72, lineNo)
			continue
		}

		if m := keyValuePattern.FindStringSubmatch(trimmed); m != nil {
			body := canon.CleanInline(m[1] + ": " + m[2])
			addChunk("bullet", body, lineNo)
			addFact(body, 0.8, lineNo)
			continue
		}

		addChunk("paragraph", canon.CleanInline(trimmed), lineNo)
	}

	return chunks, facts
}
