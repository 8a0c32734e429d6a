package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into a stable, machine-readable category.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidOperationFormat
	KindUnauthorized
	KindUnknownOperation
	KindDuplicatePosition
	KindInvalidKey
	KindInvalidPosition
	KindInvalidAnswerItem
	KindInvalidName
	KindInvalidParticipant
	KindInvalidKind
	KindInvalidPayload
	KindNotFound
	KindUnsupportedOperation
)

var kindCodes = map[Kind]string{
	KindInternal:               "INTERNAL",
	KindInvalidOperationFormat: "INVALID_OPERATION_FORMAT",
	KindUnauthorized:           "UNAUTHORIZED",
	KindUnknownOperation:       "UNKNOWN_OPERATION",
	KindDuplicatePosition:      "DUPLICATE_POSITION",
	KindInvalidKey:             "INVALID_KEY",
	KindInvalidPosition:        "INVALID_POSITION",
	KindInvalidAnswerItem:      "INVALID_ANSWER_ITEM",
	KindInvalidName:            "INVALID_NAME",
	KindInvalidParticipant:     "INVALID_PARTICIPANT",
	KindInvalidKind:            "INVALID_KIND",
	KindInvalidPayload:         "INVALID_PAYLOAD",
	KindNotFound:               "NOT_FOUND",
	KindUnsupportedOperation:   "UNSUPPORTED_OPERATION",
}

// Code returns the stable code clients can switch on.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInternal]
}

// Status maps the kind onto an HTTP-independent status class.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound, KindUnknownOperation:
		return http.StatusNotFound
	case KindDuplicatePosition, KindInvalidOperationFormat, KindInvalidKey, KindInvalidPosition,
		KindInvalidAnswerItem, KindInvalidName, KindInvalidParticipant, KindInvalidKind,
		KindInvalidPayload, KindUnsupportedOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string { return k.Code() }

// Error is the single error type surfaced by the quiz core.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Code()
	}
	return e.Kind.Code() + ": " + e.Detail
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Code is shorthand for e.Kind.Code().
func (e *Error) Code() string { return e.Kind.Code() }

// Status is shorthand for e.Kind.Status().
func (e *Error) Status() int { return e.Kind.Status() }

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// AsError extracts the *Error carried by err. Anything else is reported as Internal
// without leaking the underlying message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Detail: "internal error"}
}

var (
	ErrInvalidOperationFormat = &Error{Kind: KindInvalidOperationFormat}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized}
	ErrUnknownOperation       = &Error{Kind: KindUnknownOperation}
	ErrDuplicatePosition      = &Error{Kind: KindDuplicatePosition}
	ErrInvalidKey             = &Error{Kind: KindInvalidKey}
	ErrInvalidPosition        = &Error{Kind: KindInvalidPosition}
	ErrInvalidAnswerItem      = &Error{Kind: KindInvalidAnswerItem}
	ErrInvalidName            = &Error{Kind: KindInvalidName}
	ErrInvalidParticipant     = &Error{Kind: KindInvalidParticipant}
	ErrInvalidKind            = &Error{Kind: KindInvalidKind}
	ErrInvalidPayload         = &Error{Kind: KindInvalidPayload}
	// ErrNotFound is returned when a quiz or item is absent.
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation}
	ErrInternal             = &Error{Kind: KindInternal}
)
