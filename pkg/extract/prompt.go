package extract

// systemPrompt fixes the output schema for every extraction call. The
// vocabulary here must stay in sync with allowedTypes.
const systemPrompt = `You extract a knowledge graph from an AI agent's working notes.

Read the user's document and return ONLY a JSON object with this exact shape:

{
  "entities": [
    {"name": "...", "type": "person|project|tool|concept|preference", "summary": "...", "confidence": 0.0}
  ],
  "relations": [
    {"subject": "...", "predicate": "...", "object": "...", "fact": "...", "confidence": 0.0}
  ]
}

Rules:
- "name" is the entity's display name as written in the notes.
- "type" must be one of: person, project, tool, concept, preference.
- "summary" is one short sentence about the entity, from the notes only.
- "predicate" is a short lowercase verb phrase like "works_on" or "prefers".
- "fact" is one human-readable sentence stating the relation.
- "confidence" is a number between 0 and 1.
- Only include entities and relations the document actually supports.
- Return an empty array for anything you cannot find. Never invent content.`
