/*
Package canon holds the text-normalization primitives the memory engine
uses to decide whether two mentions refer to the same entity or fact.
Every function here is total and deterministic: canonical forms are used
as dedup keys and id seeds, never displayed.
*/
package canon

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	linkPattern     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisPattern = regexp.MustCompile("[*_`~]+")
	spacePattern    = regexp.MustCompile(`\s+`)
	nonSlugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
)

// stopWords are dropped from canonical fact keys so trivial rewording
// ("the invoice is due" vs "invoice due") collapses to one key.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "of": {}, "to": {}, "and": {},
	"or": {}, "for": {}, "on": {}, "in": {}, "at": {}, "it": {},
	"this": {}, "that": {}, "with": {},
}

/*
CleanInline strips inline markdown syntax (emphasis, code spans, link
targets) and collapses runs of whitespace. The result is plain display
text, trimmed.
*/
func CleanInline(text string) string {
	out := linkPattern.ReplaceAllString(text, "$1")
	out = emphasisPattern.ReplaceAllString(out, "")
	out = spacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

/*
Slug derives a lowercase, hyphen-separated identifier seed from text,
capped at 48 characters. It never returns an empty string: input with no
usable characters slugs to "item". Callers still have to dedup the
result against their existing id set.
*/
func Slug(text string) string {
	s := nonSlugPattern.ReplaceAllString(strings.ToLower(text), "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.Trim(s[:48], "-")
	}
	if s == "" {
		return "item"
	}
	return s
}

/*
CanonicalizeFact reduces a fact statement to a dedup key: lowercase, no
punctuation, stop words removed, whitespace collapsed, capped at 120
characters.
*/
func CanonicalizeFact(text string) string {
	words := strings.Fields(foldToAlnum(text))
	kept := words[:0]
	for _, w := range words {
		if _, skip := stopWords[w]; skip {
			continue
		}
		kept = append(kept, w)
	}
	out := strings.Join(kept, " ")
	if len(out) > 120 {
		out = strings.TrimSpace(out[:120])
	}
	return out
}

/*
CanonicalEntityName folds an entity mention to the form used to merge
repeated mentions across documents: lowercase, punctuation stripped,
whitespace collapsed. "OpenAI!!" and "openai" fold to the same name.
*/
func CanonicalEntityName(name string) string {
	return strings.Join(strings.Fields(foldToAlnum(name)), " ")
}

// foldToAlnum lowercases text and replaces every rune that is not a
// letter or digit with a space.
func foldToAlnum(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
