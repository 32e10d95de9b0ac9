package llm

import (
	"github.com/sandevgo/ragway/internal/core"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com"
	anthropicPath      = "/v1/messages"
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 1024
)

type Anthropic struct{}

func NewAnthropic() *Anthropic { return &Anthropic{} }

func (a *Anthropic) ID() core.ProviderID { return core.ProviderAnthropic }

func (a *Anthropic) BuildRequest(call core.ProviderCall) (*core.WireRequest, error) {
	if err := requireCredential(a.ID(), call.Credential); err != nil {
		return nil, err
	}
	endpoint, err := hostedURL(a.ID(), call.Endpoint, anthropicBaseURL, anthropicPath)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Model     string        `json:"model"`
		MaxTokens int           `json:"max_tokens"`
		Messages  []chatMessage `json:"messages"`
	}{
		Model:     call.Model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: call.Prompt}},
	}

	return newJSONRequest(a.ID(), endpoint, payload, map[string]string{
		"x-api-key":         call.Credential,
		"anthropic-version": anthropicVersion,
	})
}

func (a *Anthropic) ParseResponse(resp *core.WireResponse) (string, error) {
	text, ok := contentBlockText(resp.Body)
	if !ok {
		return "", unrecognized(a.ID(), "missing content[0].text")
	}
	return orFallback(text), nil
}
