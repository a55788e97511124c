package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the core reports.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION_ERROR"
	KindDomain     Kind = "DOMAIN_ERROR"
	KindConflict   Kind = "CONCURRENCY_CONFLICT"
	KindStore      Kind = "STORE_FAILURE"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its kind.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrDomain     = &Error{Kind: KindDomain}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrStore      = &Error{Kind: KindStore}
)

// ErrNoRow is returned by store lookups when no row has the requested key.
// The guard turns it into a NotFound error.
var ErrNoRow = errors.New("no row")

// Error is the structured failure returned by core operations.
// Field names the offending input (e.g. "lines[1].quantity") when there is one.
type Error struct {
	Kind      Kind
	Entity    string
	ID        int64
	Field     string
	Detail    string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Entity != "" {
		fmt.Fprintf(&b, ": %s %d", e.Entity, e.ID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel (or any *Error) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Entity == "" && t.Detail == "" && t.Err == nil
}

// NotFound reports a missing or hidden (archived) entity. The two cases are
// deliberately indistinguishable.
func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:   KindNotFound,
		Entity: entity,
		ID:     id,
		Detail: fmt.Sprintf("%s %d not found", singular(entity), id),
	}
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Detail: fmt.Sprintf(format, args...)}
}

func Domain(format string, args ...any) *Error {
	return &Error{Kind: KindDomain, Detail: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...), Retryable: true}
}

// StoreFailure wraps a persistence error. Deadline expiry is marked
// retryable so callers can tell a timeout from a hard failure.
func StoreFailure(op string, err error) *Error {
	return &Error{
		Kind:      KindStore,
		Detail:    op,
		Err:       err,
		Retryable: errors.Is(err, context.DeadlineExceeded),
	}
}

// KindOf returns the kind of err, or KindStore for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsRetryable reports whether the caller may retry the same request as is.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindConflict || e.Retryable
	}
	return false
}

func singular(entity string) string {
	switch entity {
	case EntityCategory:
		return "category"
	case EntityStock:
		return "stock row"
	case EntityStatus:
		return "order status"
	case EntityOrderLine:
		return "order line"
	}
	return strings.TrimSuffix(entity, "s")
}
