package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/ragway/internal/core"
)

// FallbackText replaces a structurally valid but empty provider reply.
const FallbackText = "Sorry, I could not generate a response."

// newJSONRequest marshals body and sets the headers every adapter sends.
func newJSONRequest(provider core.ProviderID, rawURL string, body any, headers map[string]string) (*core.WireRequest, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, core.NewProviderError(core.KindConfiguration, provider, "%s: marshal request: %v", provider, err)
	}

	h := make(http.Header, len(headers)+2)
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", core.RagwayUserAgent)
	for k, v := range headers {
		h.Set(k, v)
	}

	return &core.WireRequest{
		Method: http.MethodPost,
		URL:    rawURL,
		Header: h,
		Body:   data,
	}, nil
}

// hostedURL joins the vendor path onto either the vendor base URL or the
// caller's base-URL override.
func hostedURL(provider core.ProviderID, endpoint, defaultBase, path string) (string, error) {
	base := defaultBase
	if endpoint != "" {
		base = strings.TrimRight(endpoint, "/")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return "", core.NewProviderError(core.KindConfiguration, provider, "%s: invalid endpoint", provider)
	}
	return base + path, nil
}

func requireCredential(provider core.ProviderID, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return core.NewProviderError(core.KindConfiguration, provider, "%s: API key is required", provider)
	}
	return nil
}

func unrecognized(provider core.ProviderID, what string) error {
	return core.NewProviderError(core.KindFormatUnrecognized, provider, "%s: unexpected response format: %s", provider, what)
}

func orFallback(text string) string {
	if strings.TrimSpace(text) == "" {
		return FallbackText
	}
	return text
}

// vendorErrorMessage pulls error.message (or a string error field) out of a
// failed response, falling back to the truncated body.
func vendorErrorMessage(body []byte) string {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(payload.Error, &flat) == nil && flat != "" {
			return flat
		}
	}
	return truncate(strings.TrimSpace(string(body)), 200)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func decodeFailure(provider core.ProviderID, err error) error {
	return unrecognized(provider, fmt.Sprintf("invalid JSON: %v", err))
}
