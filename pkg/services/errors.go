package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the HTTP layer can pick a status code.
type ErrorKind int

const (
	// KindUpstreamFailure はモデル呼び出しなど想定外の失敗です (HTTP 500)。
	KindUpstreamFailure ErrorKind = iota
	// KindInvalidInput は入力値の形式エラーです (HTTP 400)。
	KindInvalidInput
	// KindStartupFailure はモデル成果物の読み込み失敗です (起動中止)。
	KindStartupFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindStartupFailure:
		return "startup_failure"
	default:
		return "upstream_failure"
	}
}

// ServiceError carries a kind and the message shown to the client.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewInvalidInput creates a client-facing validation error.
func NewInvalidInput(message string) error {
	return &ServiceError{Kind: KindInvalidInput, Message: message}
}

// NewUpstreamFailure wraps an unexpected model failure. The message is the
// raw failure text.
func NewUpstreamFailure(err error) error {
	return &ServiceError{Kind: KindUpstreamFailure, Message: err.Error(), Err: err}
}

// NewStartupFailure wraps a failure that must stop the service from serving.
func NewStartupFailure(what string, err error) error {
	return &ServiceError{
		Kind:    KindStartupFailure,
		Message: fmt.Sprintf("%s: %v", what, err),
		Err:     err,
	}
}

// KindOf returns the kind of err. Errors that are not ServiceErrors are
// upstream failures.
func KindOf(err error) ErrorKind {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return KindUpstreamFailure
}
