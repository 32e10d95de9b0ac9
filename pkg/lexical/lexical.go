// Package lexical implements the term-overlap relevance used for context
// retrieval. It is purely textual: no stemming, no embeddings.
package lexical

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "do": {}, "for": {}, "from": {}, "has": {}, "have": {}, "he": {},
	"her": {}, "his": {}, "how": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "me": {}, "my": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"or": {}, "our": {}, "she": {}, "so": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "why": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// Terms returns the distinct, case-folded terms of text in first-seen order.
// Single-rune tokens and common English stopwords are dropped.
func Terms(text string) []string {
	folder := cases.Fold()
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		term := folder.String(tok)
		if len([]rune(term)) < 2 {
			continue
		}
		if _, ok := stopwords[term]; ok {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// Score counts how many of queryTerms occur in text.
func Score(queryTerms []string, text string) int {
	if len(queryTerms) == 0 {
		return 0
	}
	present := make(map[string]struct{})
	for _, t := range Terms(text) {
		present[t] = struct{}{}
	}

	score := 0
	for _, q := range queryTerms {
		if _, ok := present[q]; ok {
			score++
		}
	}
	return score
}

// Rank returns the indices of texts sharing at least one term with
// queryTerms, best score first. Equal scores keep their input order.
func Rank(queryTerms []string, texts []string) []int {
	type hit struct{ idx, score int }
	hits := make([]hit, 0, len(texts))
	for i, text := range texts {
		if s := Score(queryTerms, text); s > 0 {
			hits = append(hits, hit{idx: i, score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.idx
	}
	return out
}
