package telegram

import (
	"errors"
	"strings"
	"testing"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestSessionFor(t *testing.T) {
	assert.Equal(t, "telegram-42", sessionFor("telegram-", 42))
	assert.Equal(t, "tg:-1001", sessionFor("tg:", -1001))
}

func TestErrorText(t *testing.T) {
	err := core.NewProviderError(core.KindUnreachable, core.ProviderOllama, "cannot connect to ollama: connection refused")
	assert.Equal(t, "ProviderUnreachable: cannot connect to ollama: connection refused", errorText(err))

	assert.Equal(t, "InternalError: the request could not be completed", errorText(errors.New("disk full")))
}

func TestRenderChunks(t *testing.T) {
	assert.Nil(t, renderChunks("   "))

	got := renderChunks("**bold** answer")
	assert.Equal(t, []string{"<strong>bold</strong> answer"}, got)

	long := strings.Repeat("line of text\n\n", 800)
	chunks := renderChunks(long)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), maxTelegramMsgLen)
	}
}
