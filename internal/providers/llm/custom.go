package llm

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

// Custom posts a chat-style body to an arbitrary endpoint and accepts any of
// the common reply shapes.
type Custom struct{}

func NewCustom() *Custom { return &Custom{} }

func (c *Custom) ID() core.ProviderID { return core.ProviderCustom }

func (c *Custom) BuildRequest(call core.ProviderCall) (*core.WireRequest, error) {
	if strings.TrimSpace(call.Endpoint) == "" {
		return nil, core.NewProviderError(core.KindConfiguration, c.ID(), "custom: API URL is required")
	}

	headers := map[string]string{}
	if call.Credential != "" {
		headers["Authorization"] = "Bearer " + call.Credential
	}
	return newJSONRequest(c.ID(), call.Endpoint, newChatPayload(call.Model, call.Prompt, nil), headers)
}

// ParseResponse tries each known shape in order; the first match wins.
func (c *Custom) ParseResponse(resp *core.WireResponse) (string, error) {
	for _, match := range []func([]byte) (string, bool){
		matchChatChoice,
		contentBlockText,
		matchFlatResponse,
		matchRawString,
	} {
		if text, ok := match(resp.Body); ok {
			return orFallback(text), nil
		}
	}
	return "", unrecognized(c.ID(), "no known response shape matched")
}

func matchChatChoice(body []byte) (string, bool) {
	text, ok := chatChoiceContent(body)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func matchFlatResponse(body []byte) (string, bool) {
	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Response == "" {
		return "", false
	}
	return result.Response, true
}

// matchRawString accepts a JSON string literal or a plain-text body.
func matchRawString(body []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", false
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
		return s, s != ""
	}
	if json.Valid([]byte(trimmed)) {
		return "", false
	}
	return trimmed, true
}
