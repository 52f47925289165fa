// Package lxerr classifies the failures of the LeanIX adapter.
//
// Every error that leaves the adapter carries one of five kinds:
//
//   - Configuration: blank or invalid settings, detected before any network call
//   - Auth: the OAuth2 token endpoint rejected the request or answered garbage
//   - Query: the GraphQL endpoint answered non-2xx or with a non-JSON body
//   - Validation: a caller passed a blank or out-of-range parameter
//   - Mapping: a response node could not be converted into a fact sheet
//
// Errors support errors.Is against the kind sentinels and errors.As against *Error:
//
//	if errors.Is(err, lxerr.ErrAuth) {
//	    // token problem, check the API token
//	}
package lxerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of an adapter failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindAuth
	KindQuery
	KindValidation
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuth:
		return "auth"
	case KindQuery:
		return "query"
	case KindValidation:
		return "validation"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. An *Error matches the sentinel of its kind.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrAuth          = errors.New("auth error")
	ErrQuery         = errors.New("query error")
	ErrValidation    = errors.New("validation error")
	ErrMapping       = errors.New("mapping error")
)

// maxBodyExcerpt bounds how much of an upstream body ends up in a message.
const maxBodyExcerpt = 2048

// Error is a classified adapter failure.
type Error struct {
	Kind Kind
	// Op names the failing operation, e.g. "auth.GetToken" or "leanix.Query".
	Op string
	// Status is the upstream HTTP status code, 0 when no response was received.
	Status int
	// Body is the upstream response body, if any.
	Body string
	// Msg is a short human-readable description.
	Msg string
	Err error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Kind.String()+" error")
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status %d", e.Status))
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		if len(body) > maxBodyExcerpt {
			body = body[:maxBodyExcerpt] + "..."
		}
		parts = append(parts, body)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindAuth:
		return ErrAuth
	case KindQuery:
		return ErrQuery
	case KindValidation:
		return ErrValidation
	case KindMapping:
		return ErrMapping
	default:
		return nil
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Configuration reports a missing or invalid setting.
func Configuration(op, format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports a bad caller-supplied parameter.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Auth reports a token endpoint failure. status is 0 for transport failures.
func Auth(op string, status int, body string, err error) *Error {
	return &Error{Kind: KindAuth, Op: op, Msg: "failed to get access token", Status: status, Body: body, Err: err}
}

// Query reports a GraphQL endpoint failure. status is 0 for transport failures.
func Query(op string, status int, body string, err error) *Error {
	return &Error{Kind: KindQuery, Op: op, Msg: "graphql query failed", Status: status, Body: body, Err: err}
}

// Mapping reports a response node that could not be converted.
func Mapping(op string, err error) *Error {
	return &Error{Kind: KindMapping, Op: op, Msg: "failed to map fact sheets", Err: err}
}
