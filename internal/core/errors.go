package core

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation          ErrorKind = "ValidationError"
	KindConfiguration       ErrorKind = "ConfigurationError"
	KindUnreachable         ErrorKind = "ProviderUnreachable"
	KindTransport           ErrorKind = "ProviderTransportError"
	KindFormatUnrecognized  ErrorKind = "ResponseFormatUnrecognized"
	KindUnsupportedProvider ErrorKind = "UnsupportedProviderError"
	// KindStoreUnavailable never leaves the context retriever.
	KindStoreUnavailable ErrorKind = "StoreUnavailable"
)

// CallerFault reports whether the kind stems from the caller's input rather
// than from the upstream provider.
func (k ErrorKind) CallerFault() bool {
	switch k {
	case KindValidation, KindConfiguration, KindUnsupportedProvider:
		return true
	}
	return false
}

// ProviderError is the only error type Generate returns. Message never
// contains a credential.
type ProviderError struct {
	Kind      ErrorKind
	Provider  ProviderID
	Message   string
	Retriable bool

	cause error
}

var (
	ErrValidation          = &ProviderError{Kind: KindValidation}
	ErrConfiguration       = &ProviderError{Kind: KindConfiguration}
	ErrUnreachable         = &ProviderError{Kind: KindUnreachable}
	ErrTransport           = &ProviderError{Kind: KindTransport}
	ErrFormatUnrecognized  = &ProviderError{Kind: KindFormatUnrecognized}
	ErrUnsupportedProvider = &ProviderError{Kind: KindUnsupportedProvider}
	ErrStoreUnavailable    = &ProviderError{Kind: KindStoreUnavailable}
)

func NewProviderError(kind ErrorKind, provider ProviderID, format string, args ...any) *ProviderError {
	return &ProviderError{
		Kind:     kind,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithCause attaches the underlying error for errors.Is/As inspection.
func (e *ProviderError) WithCause(err error) *ProviderError {
	e.cause = err
	return e
}

func (e *ProviderError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Is matches the kind sentinels (ErrConfiguration etc.).
func (e *ProviderError) Is(target error) bool {
	t, ok := target.(*ProviderError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// KindOf returns the kind of a ProviderError anywhere in the chain, or ""
// for foreign errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
