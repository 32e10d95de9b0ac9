package llm

import (
	"encoding/json"
	"net/url"

	"github.com/sandevgo/ragway/internal/core"
)

const googleBaseURL = "https://generativelanguage.googleapis.com"

// Google calls the Gemini generateContent REST endpoint. The API key travels
// in the query string, so the request URL must never be logged.
type Google struct{}

func NewGoogle() *Google { return &Google{} }

func (g *Google) ID() core.ProviderID { return core.ProviderGoogle }

func (g *Google) BuildRequest(call core.ProviderCall) (*core.WireRequest, error) {
	if err := requireCredential(g.ID(), call.Credential); err != nil {
		return nil, err
	}
	path := "/v1beta/models/" + url.PathEscape(call.Model) + ":generateContent?key=" + url.QueryEscape(call.Credential)
	endpoint, err := hostedURL(g.ID(), call.Endpoint, googleBaseURL, path)
	if err != nil {
		return nil, err
	}

	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	payload := struct {
		Contents []content `json:"contents"`
	}{
		Contents: []content{{Parts: []part{{Text: call.Prompt}}}},
	}

	return newJSONRequest(g.ID(), endpoint, payload, nil)
}

func (g *Google) ParseResponse(resp *core.WireResponse) (string, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text *string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return "", decodeFailure(g.ID(), err)
	}
	if len(result.Candidates) == 0 ||
		len(result.Candidates[0].Content.Parts) == 0 ||
		result.Candidates[0].Content.Parts[0].Text == nil {
		return "", unrecognized(g.ID(), "missing candidates[0].content.parts[0].text")
	}
	return orFallback(*result.Candidates[0].Content.Parts[0].Text), nil
}
