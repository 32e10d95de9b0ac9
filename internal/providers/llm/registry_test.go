package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDoer struct {
	calls atomic.Int32
	do    func(*http.Request) (*http.Response, error)
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	if d.do != nil {
		return d.do(req)
	}
	return nil, errors.New("unexpected call")
}

func TestRegistry_UnsupportedProvider(t *testing.T) {
	doer := &countingDoer{}
	r := NewDefaultRegistry(doer, time.Second)

	_, err := r.Generate(context.Background(), core.ProviderConfig{Provider: "mistral", Model: "x"}, "hi")

	require.Error(t, err)
	assert.Equal(t, core.KindUnsupportedProvider, core.KindOf(err))
	assert.Contains(t, err.Error(), "mistral")
	assert.Zero(t, doer.calls.Load())
}

func TestRegistry_MissingConfigurationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		cfg  core.ProviderConfig
		want string
	}{
		{"openai", core.ProviderConfig{Provider: core.ProviderOpenAI, Model: "gpt-4o"}, "API key is required"},
		{"anthropic", core.ProviderConfig{Provider: core.ProviderAnthropic, Model: "claude"}, "API key is required"},
		{"google", core.ProviderConfig{Provider: core.ProviderGoogle, Model: "gemini-pro", Credential: "   "}, "API key is required"},
		{"custom", core.ProviderConfig{Provider: core.ProviderCustom, Model: "m", Credential: "k"}, "API URL is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &countingDoer{}
			r := NewDefaultRegistry(doer, time.Second)

			_, err := r.Generate(context.Background(), tt.cfg, "hi")

			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, doer.calls.Load())
		})
	}
}

func TestOpenAI_Wire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, core.RagwayUserAgent, r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"model": "gpt-4o-mini",
			"messages": [
				{"role": "system", "content": "You are a helpful assistant."},
				{"role": "user", "content": "Hello"}
			],
			"temperature": 0.7
		}`, string(body))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi there"}}]}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	text, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderOpenAI, Model: "gpt-4o-mini", Credential: "sk-test", Endpoint: srv.URL,
	}, "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)
}

func TestOpenAI_DefaultURL(t *testing.T) {
	req, err := NewOpenAI().BuildRequest(core.ProviderCall{Prompt: "p", Model: "m", Credential: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", req.URL)
}

func TestAnthropic_Wire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ant-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Empty(t, r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"model": "claude-3-haiku",
			"max_tokens": 1024,
			"messages": [{"role": "user", "content": "Hello"}]
		}`, string(body))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Bonjour"}]}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	text, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderAnthropic, Model: "claude-3-haiku", Credential: "ant-key", Endpoint: srv.URL,
	}, "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)
}

func TestGoogle_Wire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"contents":[{"parts":[{"text":"Hello"}]}]}`, string(body))

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hola"}]}}]}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	text, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderGoogle, Model: "gemini-pro", Credential: "g-key", Endpoint: srv.URL,
	}, "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hola", text)
}

func TestOllama_Wire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"model":"llama2","prompt":"Hello","stream":false}`, string(body))

		_, _ = w.Write([]byte(`{"model":"llama2","response":"Hi from llama","done":true}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	text, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderOllama, Model: "llama2", Endpoint: srv.URL + "/api/generate",
	}, "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi from llama", text)

	req, err := NewOllama().BuildRequest(core.ProviderCall{Prompt: "p", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaURL, req.URL)
}

func TestCustom_Wire(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "temperature")
		assert.Equal(t, "local-model", payload["model"])

		_, _ = w.Write([]byte(`{"response":"flat reply"}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	cfg := core.ProviderConfig{Provider: core.ProviderCustom, Model: "local-model", Endpoint: srv.URL + "/v1/generate"}

	text, err := r.Generate(context.Background(), cfg, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "flat reply", text)
	assert.Equal(t, "", gotAuth.Load())

	cfg.Credential = "tok"
	_, err = r.Generate(context.Background(), cfg, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth.Load())
}

func TestCustom_ParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"chat choices", `{"choices":[{"message":{"content":"from choices"}}],"response":"ignored"}`, "from choices", false},
		{"content blocks", `{"content":[{"text":"from blocks"}],"response":"ignored"}`, "from blocks", false},
		{"flat response", `{"response":"from flat"}`, "from flat", false},
		{"json string", `"just a string"`, "just a string", false},
		{"plain text", "plain text body\n", "plain text body", false},
		{"empty choice content falls through", `{"choices":[{"message":{"content":""}}],"response":"flat wins"}`, "flat wins", false},
		{"unrecognized object", `{"data":{"text":"nope"}}`, "", true},
		{"empty body", ``, "", true},
		{"json number", `42`, "", true},
	}

	c := NewCustom()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ParseResponse(&core.WireResponse{StatusCode: 200, Body: []byte(tt.body)})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, core.KindFormatUnrecognized, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostedAdapters_ParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		adapter core.ProviderAdapter
		body    string
		want    string
		wantErr bool
	}{
		{"openai empty content uses fallback", NewOpenAI(), `{"choices":[{"message":{"content":""}}]}`, FallbackText, false},
		{"openai no choices", NewOpenAI(), `{"choices":[]}`, "", true},
		{"anthropic missing content", NewAnthropic(), `{"id":"msg_1"}`, "", true},
		{"google no candidates", NewGoogle(), `{"candidates":[]}`, "", true},
		{"google not json", NewGoogle(), `<html>`, "", true},
		{"ollama missing response", NewOllama(), `{"done":true}`, "", true},
		{"ollama blank response uses fallback", NewOllama(), `{"response":"  "}`, FallbackText, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.adapter.ParseResponse(&core.WireResponse{StatusCode: 200, Body: []byte(tt.body)})
			if tt.wantErr {
				assert.Equal(t, core.KindFormatUnrecognized, core.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided: sk-leak","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)
	_, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderOpenAI, Model: "gpt-4o", Credential: "sk-leak", Endpoint: srv.URL,
	}, "Hello")

	require.Error(t, err)
	assert.Equal(t, core.KindTransport, core.KindOf(err))
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.NotContains(t, err.Error(), "sk-leak")
}

func TestRegistry_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/generate"
	srv.Close()

	r := NewDefaultRegistry(&http.Client{}, time.Second)
	_, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderOllama, Model: "llama2", Endpoint: endpoint,
	}, "Hello")

	require.Error(t, err)
	assert.Equal(t, core.KindUnreachable, core.KindOf(err))
	assert.Contains(t, err.Error(), "ollama")
}

func TestRegistry_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), 50*time.Millisecond)
	_, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderCustom, Model: "m", Endpoint: srv.URL,
	}, "Hello")

	require.Error(t, err)
	assert.Equal(t, core.KindTransport, core.KindOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestRegistry_TransportErrorDropsKeyedURL(t *testing.T) {
	doer := &countingDoer{do: func(req *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: "Post", URL: req.URL.String(), Err: errors.New("tls: handshake failure")}
	}}

	r := NewDefaultRegistry(doer, time.Second)
	_, err := r.Generate(context.Background(), core.ProviderConfig{
		Provider: core.ProviderGoogle, Model: "gemini-pro", Credential: "AIzaSecret",
	}, "Hello")

	require.Error(t, err)
	assert.Equal(t, core.KindTransport, core.KindOf(err))
	assert.Contains(t, err.Error(), "handshake failure")
	assert.NotContains(t, err.Error(), "AIzaSecret")
	assert.Equal(t, int32(1), doer.calls.Load())
}

func TestRegistry_ConcurrentCallsKeepConfigSeparate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": payload.Model + "|" + strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")})
	}))
	defer srv.Close()

	r := NewDefaultRegistry(srv.Client(), time.Second)

	results := make(chan [2]string, 20)
	for i := range 20 {
		go func() {
			model := "m" + string(rune('a'+i))
			text, err := r.Generate(context.Background(), core.ProviderConfig{
				Provider: core.ProviderCustom, Model: model, Credential: "k" + model, Endpoint: srv.URL,
			}, "Hello")
			assert.NoError(t, err)
			results <- [2]string{model, text}
		}()
	}
	for range 20 {
		got := <-results
		assert.Equal(t, got[0]+"|k"+got[0], got[1])
	}
}
