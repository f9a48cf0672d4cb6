package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a canned response or error for every call.
type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtractDocumentValidOutput(t *testing.T) {
	stub := &stubProvider{response: `{
		"entities": [
			{"name": "Jane", "type": "person", "summary": "Project lead", "confidence": 0.9},
			{"name": "Atlas", "type": "starship", "confidence": 1.7},
			{"name": "   ", "type": "person"}
		],
		"relations": [
			{"subject": "Jane", "predicate": "leads", "object": "Atlas", "confidence": -2},
			{"subject": "Jane", "predicate": "", "object": "Atlas"}
		]
	}`}

	result := New(stub).ExtractDocument(context.Background(), "notes.md", "Jane leads Atlas.")
	require.NoError(t, result.Err)

	require.Len(t, result.Output.Entities, 2, "empty-name entity must be dropped")
	assert.Equal(t, "person", result.Output.Entities[0].Type)
	assert.Equal(t, "concept", result.Output.Entities[1].Type, "unknown type coerced to concept")
	assert.Equal(t, 1.0, result.Output.Entities[1].Confidence, "confidence clamped to [0,1]")

	require.Len(t, result.Output.Relations, 1, "incomplete triple must be dropped")
	rel := result.Output.Relations[0]
	assert.Equal(t, "Jane leads Atlas", rel.Fact, "fact defaults to subject predicate object")
	assert.Equal(t, 0.0, rel.Confidence)
}

func TestExtractDocumentDefaultConfidence(t *testing.T) {
	stub := &stubProvider{response: `{"entities":[{"name":"Redis","type":"tool"}],"relations":[]}`}

	result := New(stub).ExtractDocument(context.Background(), "tools.md", "Redis is used for caching.")
	require.NoError(t, result.Err)
	require.Len(t, result.Output.Entities, 1)
	assert.Equal(t, 0.75, result.Output.Entities[0].Confidence)
}

func TestExtractDocumentProviderFailureIsIsolated(t *testing.T) {
	stub := &stubProvider{err: errors.New("rate limited")}

	result := New(stub).ExtractDocument(context.Background(), "notes.md", "content")
	assert.Error(t, result.Err)
	assert.Empty(t, result.Output.Entities)
	assert.Empty(t, result.Output.Relations)
}

func TestExtractDocumentMalformedJSON(t *testing.T) {
	stub := &stubProvider{response: "definitely not json"}

	result := New(stub).ExtractDocument(context.Background(), "notes.md", "content")
	assert.Error(t, result.Err)
	assert.Empty(t, result.Output.Entities)
}

func TestExtractDocumentStripsCodeFences(t *testing.T) {
	stub := &stubProvider{response: "```json\n{\"entities\":[{\"name\":\"Git\",\"type\":\"tool\"}],\"relations\":[]}\n```"}

	result := New(stub).ExtractDocument(context.Background(), "notes.md", "Git usage.")
	require.NoError(t, result.Err)
	require.Len(t, result.Output.Entities, 1)
	assert.Equal(t, "Git", result.Output.Entities[0].Name)
}

func TestExtractDocumentSkipsEmptyContent(t *testing.T) {
	stub := &stubProvider{response: `{}`}

	result := New(stub).ExtractDocument(context.Background(), "empty.md", "   \n ")
	assert.NoError(t, result.Err)
	assert.Zero(t, stub.calls, "no provider call for empty documents")
}

func TestExtractDocumentTruncatesLongContent(t *testing.T) {
	stub := &stubProvider{response: `{}`}
	ex := New(stub)

	long := make([]byte, maxDocumentChars*2)
	for i := range long {
		long[i] = 'a'
	}

	result := ex.ExtractDocument(context.Background(), "big.md", string(long))
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, stub.calls)
}
