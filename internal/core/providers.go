package core

import (
	"context"
	"net/http"
)

type ProviderID string

const (
	ProviderOllama    ProviderID = "ollama"
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGoogle    ProviderID = "google"
	ProviderCustom    ProviderID = "custom"
)

// ProviderConfig is supplied by the caller for every request.
type ProviderConfig struct {
	Provider   ProviderID `json:"provider"`
	Model      string     `json:"model"`
	Credential string     `json:"apiKey,omitempty"`
	Endpoint   string     `json:"apiUrl,omitempty"`
}

// Override layers the non-empty fields of o over c. Switching to another
// provider starts from a blank config so c's credential and endpoint never
// reach a different vendor.
func (c ProviderConfig) Override(o ProviderConfig) ProviderConfig {
	if o.Provider != "" && o.Provider != c.Provider {
		c = ProviderConfig{Provider: o.Provider}
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.Credential != "" {
		c.Credential = o.Credential
	}
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	return c
}

// ProviderCall is what an adapter needs to build one wire request.
type ProviderCall struct {
	Prompt     string
	Model      string
	Credential string
	Endpoint   string
}

type WireRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

type WireResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ProviderAdapter translates between the normalized call and one vendor's
// wire format. Implementations keep no per-request state.
type ProviderAdapter interface {
	ID() ProviderID
	BuildRequest(call ProviderCall) (*WireRequest, error)
	ParseResponse(resp *WireResponse) (string, error)
}

// TextGenerator dispatches a composed prompt to the selected provider.
type TextGenerator interface {
	Generate(ctx context.Context, cfg ProviderConfig, prompt string) (string, error)
}
