package llm

import (
	"encoding/json"

	"github.com/sandevgo/ragway/internal/core"
)

const DefaultOllamaURL = "http://localhost:11434/api/generate"

// Ollama talks to a local Ollama daemon. Endpoint, when set, is the full
// generate URL.
type Ollama struct{}

func NewOllama() *Ollama { return &Ollama{} }

func (o *Ollama) ID() core.ProviderID { return core.ProviderOllama }

func (o *Ollama) BuildRequest(call core.ProviderCall) (*core.WireRequest, error) {
	endpoint := DefaultOllamaURL
	if call.Endpoint != "" {
		endpoint = call.Endpoint
	}

	payload := struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
		Stream bool   `json:"stream"`
	}{
		Model:  call.Model,
		Prompt: call.Prompt,
	}

	headers := map[string]string{}
	if call.Credential != "" {
		headers["Authorization"] = "Bearer " + call.Credential
	}
	return newJSONRequest(o.ID(), endpoint, payload, headers)
}

func (o *Ollama) ParseResponse(resp *core.WireResponse) (string, error) {
	var result struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", decodeFailure(o.ID(), err)
	}
	if result.Response == nil {
		return "", unrecognized(o.ID(), "missing response field")
	}
	return orFallback(*result.Response), nil
}
