// Package markup extracts bracketed style tags from paragraph text.
//
// Paragraphs carry inline markup of the form "[token]text[/token]". Parsing
// strips every tag marker from the text and records, for each properly closed
// tag, a span over the stripped text annotated with the hash of the tag stack
// enclosing it. Distinct stacks ("permutations") are collected into a table
// keyed by that hash so renderers only need to resolve each combination once.
package markup

import (
	"hash/fnv"
	"strings"
)

// Span is a byte range [Start, End) in the stripped paragraph text styled by
// the permutation identified by Hash.
type Span struct {
	Hash  uint32
	Start int
	End   int
}

// Permutation is the ordered list of tokens which were open (in push order)
// when a span was closed.
type Permutation []string

// Table maps permutation hashes to permutations.
type Table map[uint32]Permutation

// Merge copies all permutations from src into dst, overwriting on hash
// collision.
func (t Table) Merge(src Table) {
	for h, p := range src {
		t[h] = p
	}
}

// Result is the outcome of parsing a single paragraph.
type Result struct {
	Text         string
	Spans        []Span
	Permutations Table
}

// Hash returns FNV-1a (32 bit) hash of concatenated tokens. Different token
// lists producing the same concatenation hash identically, this is accepted.
func Hash(tokens []string) uint32 {
	h := fnv.New32a()
	for _, t := range tokens {
		_, _ = h.Write([]byte(t)) // never returns an error
	}
	return h.Sum32()
}

// Parse removes tag markers from paragraph and builds spans for every closing
// tag which matches the top of the open tag stack. Closing tags which do not
// match are dropped silently, open tags never closed produce no span.
// Unterminated "[" consumes the rest of the paragraph.
func Parse(paragraph string) Result {
	res := Result{Permutations: make(Table)}

	var (
		out    strings.Builder
		tokens []string
		starts []int
	)
	out.Grow(len(paragraph))

	for i := 0; i < len(paragraph); {
		if paragraph[i] != '[' {
			out.WriteByte(paragraph[i])
			i++
			continue
		}

		end := strings.IndexByte(paragraph[i+1:], ']')
		var token string
		if end < 0 {
			token = paragraph[i+1:]
			i = len(paragraph)
		} else {
			token = paragraph[i+1 : i+1+end]
			i += end + 2
		}

		if name, closing := strings.CutPrefix(token, "/"); closing {
			if len(tokens) == 0 || tokens[len(tokens)-1] != name {
				continue
			}
			perm := make(Permutation, len(tokens))
			copy(perm, tokens)
			h := Hash(perm)
			res.Permutations[h] = perm
			res.Spans = append(res.Spans, Span{Hash: h, Start: starts[len(starts)-1], End: out.Len()})

			tokens = tokens[:len(tokens)-1]
			starts = starts[:len(starts)-1]
			continue
		}

		tokens = append(tokens, token)
		starts = append(starts, out.Len())
	}

	res.Text = out.String()
	return res
}
