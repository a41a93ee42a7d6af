package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrDocumentNotFound = errors.New("document not found")

	// ErrStatusConflict is returned by a store when a conditional status
	// update matched no row because the status already moved on.
	ErrStatusConflict = errors.New("alert status changed concurrently")
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindPrecondition ErrorKind = "precondition_failed"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Sentinels for errors.Is against a *Error of the matching kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// Error is a user facing rejection of a single request.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
		}
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func ValidationError(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFoundError(msg string, cause error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, cause: cause}
}

func PreconditionFailed(msg string) *Error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
