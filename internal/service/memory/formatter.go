package memory

import (
	"strconv"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

const (
	contextHeader       = "Previous conversation context:\n"
	DefaultMaxPairChars = 2000
)

// Formatter renders a bundle as a prompt block. MaxPairChars caps each side
// of a pair in runes; zero disables the cap.
type Formatter struct {
	MaxPairChars int
}

func NewFormatter(maxPairChars int) Formatter {
	return Formatter{MaxPairChars: maxPairChars}
}

func (f Formatter) Format(bundle core.ContextBundle) string {
	if len(bundle) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for i, pair := range bundle {
		sb.WriteString("\n[Context ")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("]\nUser: ")
		sb.WriteString(f.clip(pair.UserText))
		sb.WriteString("\nAssistant: ")
		sb.WriteString(f.clip(pair.AssistantText))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (f Formatter) clip(s string) string {
	if f.MaxPairChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= f.MaxPairChars {
		return s
	}
	return string(r[:f.MaxPairChars]) + "..."
}
