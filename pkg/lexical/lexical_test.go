package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "stopwords only", input: "And its", want: []string{}},
		{name: "punctuation split", input: "What's the capital of France?", want: []string{"capital", "france"}},
		{name: "case folded and deduplicated", input: "Paris PARIS paris", want: []string{"paris"}},
		{name: "digits kept", input: "population 2024", want: []string{"population", "2024"}},
		{name: "unicode letters", input: "Straße München", want: []string{"strasse", "münchen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.input))
		})
	}
}

func TestScore(t *testing.T) {
	query := Terms("capital city of France")

	assert.Equal(t, 2, Score(query, "What is the capital of France?"))
	assert.Equal(t, 1, Score(query, "France has great cheese"))
	assert.Equal(t, 0, Score(query, "hello there"))
	assert.Equal(t, 0, Score(nil, "capital"))
}

func TestRank(t *testing.T) {
	texts := []string{
		"France cheese varieties",
		"Tell me about cheese",
		"hello",
		"What's the capital of France?",
	}

	got := Rank(Terms("capital France cheese"), texts)
	assert.Equal(t, []int{0, 3, 1}, got)
	assert.Empty(t, Rank(Terms("and its"), texts))
}
