package memory

import (
	"strings"
	"testing"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_Empty(t *testing.T) {
	f := NewFormatter(DefaultMaxPairChars)
	assert.Equal(t, "", f.Format(nil))
	assert.Equal(t, "", f.Format(core.ContextBundle{}))
}

func TestFormatter_Format(t *testing.T) {
	bundle := core.ContextBundle{
		{UserText: "What's the capital of France?", AssistantText: "Paris."},
		{UserText: "And Germany?", AssistantText: "Berlin."},
	}

	want := "Previous conversation context:\n" +
		"\n[Context 1]\nUser: What's the capital of France?\nAssistant: Paris.\n" +
		"\n[Context 2]\nUser: And Germany?\nAssistant: Berlin.\n"

	f := NewFormatter(DefaultMaxPairChars)
	got := f.Format(bundle)
	assert.Equal(t, want, got)
	assert.Equal(t, got, f.Format(bundle))
}

func TestFormatter_NonEmptyBundleNeverEmpty(t *testing.T) {
	f := NewFormatter(0)
	got := f.Format(core.ContextBundle{{}})
	assert.NotEmpty(t, got)
	assert.True(t, strings.HasPrefix(got, "Previous conversation context:\n"))
}

func TestFormatter_Clip(t *testing.T) {
	bundle := core.ContextBundle{{UserText: "héllo wörld", AssistantText: "short"}}

	got := NewFormatter(5).Format(bundle)
	assert.Contains(t, got, "User: héllo...\n")
	assert.Contains(t, got, "Assistant: short\n")

	got = NewFormatter(0).Format(bundle)
	assert.Contains(t, got, "User: héllo wörld\n")
}
