package llm

import (
	"github.com/sandevgo/ragway/internal/core"
)

const (
	openAIBaseURL     = "https://api.openai.com"
	openAIPath        = "/v1/chat/completions"
	openAITemperature = 0.7
)

type OpenAI struct{}

func NewOpenAI() *OpenAI { return &OpenAI{} }

func (o *OpenAI) ID() core.ProviderID { return core.ProviderOpenAI }

func (o *OpenAI) BuildRequest(call core.ProviderCall) (*core.WireRequest, error) {
	if err := requireCredential(o.ID(), call.Credential); err != nil {
		return nil, err
	}
	endpoint, err := hostedURL(o.ID(), call.Endpoint, openAIBaseURL, openAIPath)
	if err != nil {
		return nil, err
	}

	temperature := openAITemperature
	return newJSONRequest(o.ID(), endpoint, newChatPayload(call.Model, call.Prompt, &temperature), map[string]string{
		"Authorization": "Bearer " + call.Credential,
	})
}

func (o *OpenAI) ParseResponse(resp *core.WireResponse) (string, error) {
	text, ok := chatChoiceContent(resp.Body)
	if !ok {
		return "", unrecognized(o.ID(), "missing choices[0].message.content")
	}
	return orFallback(text), nil
}
