package llm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/log"
)

const (
	DefaultTimeout  = 60 * time.Second
	maxResponseSize = 8 << 20
)

// Doer is the part of *http.Client the registry needs. Tests swap it for a
// counting fake.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Registry resolves adapters by provider id and performs the single outbound
// call for each generation.
type Registry struct {
	doer     Doer
	timeout  time.Duration
	adapters map[core.ProviderID]core.ProviderAdapter
}

func NewRegistry(doer Doer, timeout time.Duration, adapters ...core.ProviderAdapter) *Registry {
	if doer == nil {
		doer = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Registry{
		doer:     doer,
		timeout:  timeout,
		adapters: make(map[core.ProviderID]core.ProviderAdapter, len(adapters)),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// NewDefaultRegistry wires every built-in adapter.
func NewDefaultRegistry(doer Doer, timeout time.Duration) *Registry {
	return NewRegistry(doer, timeout,
		NewOllama(),
		NewOpenAI(),
		NewAnthropic(),
		NewGoogle(),
		NewCustom(),
	)
}

// Register adds or replaces an adapter. It is not safe to call concurrently
// with Generate.
func (r *Registry) Register(a core.ProviderAdapter) {
	r.adapters[a.ID()] = a
}

func (r *Registry) Adapter(id core.ProviderID) (core.ProviderAdapter, error) {
	a, ok := r.adapters[core.ProviderID(strings.ToLower(string(id)))]
	if !ok {
		return nil, core.NewProviderError(core.KindUnsupportedProvider, id, "unsupported provider: %q", id)
	}
	return a, nil
}

func (r *Registry) Providers() []core.ProviderID {
	ids := make([]core.ProviderID, 0, len(r.adapters))
	for _, id := range []core.ProviderID{core.ProviderOllama, core.ProviderOpenAI, core.ProviderAnthropic, core.ProviderGoogle, core.ProviderCustom} {
		if _, ok := r.adapters[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Generate builds, sends and parses exactly one provider request. Every
// returned error is a *core.ProviderError.
func (r *Registry) Generate(ctx context.Context, cfg core.ProviderConfig, prompt string) (string, error) {
	adapter, err := r.Adapter(cfg.Provider)
	if err != nil {
		return "", err
	}

	wreq, err := adapter.BuildRequest(core.ProviderCall{
		Prompt:     prompt,
		Model:      cfg.Model,
		Credential: cfg.Credential,
		Endpoint:   cfg.Endpoint,
	})
	if err != nil {
		return "", err
	}

	wresp, err := r.invoke(ctx, adapter.ID(), wreq, cfg.Credential)
	if err != nil {
		return "", err
	}

	if wresp.StatusCode < 200 || wresp.StatusCode > 299 {
		msg := scrub(vendorErrorMessage(wresp.Body), cfg.Credential)
		return "", core.NewProviderError(core.KindTransport, adapter.ID(),
			"%s API error: %d %s", adapter.ID(), wresp.StatusCode, msg)
	}

	return adapter.ParseResponse(wresp)
}

func (r *Registry) invoke(ctx context.Context, provider core.ProviderID, wreq *core.WireRequest, credential string) (*core.WireResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, wreq.Method, wreq.URL, bytes.NewReader(wreq.Body))
	if err != nil {
		return nil, core.NewProviderError(core.KindConfiguration, provider, "%s: invalid endpoint", provider)
	}
	req.Header = wreq.Header.Clone()

	started := time.Now()
	resp, err := r.doer.Do(req)
	if err != nil {
		return nil, classify(ctx, provider, err, credential, r.timeout)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classify(ctx, provider, err, credential, r.timeout)
	}

	log.FromCtx(ctx).Debug().
		Str("provider", string(provider)).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("provider call finished")

	return &core.WireResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func classify(ctx context.Context, provider core.ProviderID, err error, credential string, timeout time.Duration) error {
	// *url.Error carries the request URL, which holds the key for some vendors
	cause := err
	var uerr *url.Error
	if errors.As(err, &uerr) {
		cause = uerr.Err
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return core.NewProviderError(core.KindUnreachable, provider,
			"cannot connect to %s: %s", provider, scrub(cause.Error(), credential)).WithCause(syscall.ECONNREFUSED)
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return core.NewProviderError(core.KindTransport, provider,
			"%s request timed out after %s", provider, timeout).WithCause(context.DeadlineExceeded)
	case errors.Is(err, context.Canceled):
		return core.NewProviderError(core.KindTransport, provider,
			"%s request cancelled", provider).WithCause(context.Canceled)
	default:
		return core.NewProviderError(core.KindTransport, provider,
			"%s request failed: %s", provider, scrub(cause.Error(), credential))
	}
}

func scrub(s, credential string) string {
	if credential == "" {
		return s
	}
	s = strings.ReplaceAll(s, credential, "[redacted]")
	if escaped := url.QueryEscape(credential); escaped != credential {
		s = strings.ReplaceAll(s, escaped, "[redacted]")
	}
	return s
}

var _ core.TextGenerator = (*Registry)(nil)

