package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FlowErrorKind classifies failures of the federated-login flow. Every
// failure returned by the auth use cases is one of these kinds; mapping a
// kind to a transport response is the route layer's concern.
type FlowErrorKind string

const (
	FlowErrConfiguration        FlowErrorKind = "configuration_error"
	FlowErrUserCancelled        FlowErrorKind = "user_cancelled"
	FlowErrMalformedCallback    FlowErrorKind = "malformed_callback"
	FlowErrStateInvalid         FlowErrorKind = "state_expired_or_invalid"
	FlowErrTokenExchange        FlowErrorKind = "token_exchange_failed"
	FlowErrProfileFetch         FlowErrorKind = "profile_fetch_failed"
	FlowErrReconciliation       FlowErrorKind = "user_reconciliation_failed"
	FlowErrAlreadyLinked        FlowErrorKind = "already_linked_to_another_account"
	FlowErrUnlinkOnlyAuthMethod FlowErrorKind = "cannot_unlink_only_auth_method"
	FlowErrNoLinkedAccount      FlowErrorKind = "no_linked_account_found"
	FlowErrUnknown              FlowErrorKind = "unknown_error"
)

// FlowError is the terminal error of a federated-login operation. None of
// these are retried by the core; the wrapped cause stays available for
// logging while Message is safe to show to a caller.
type FlowError struct {
	Kind    FlowErrorKind
	Message string
	Code    int
	cause   error
}

func (e *FlowError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.cause
}

// Is makes two FlowErrors of the same kind match under errors.Is, so tests
// and callers can compare against the sentinel constructors.
func (e *FlowError) Is(target error) bool {
	var fe *FlowError
	if errors.As(target, &fe) {
		return e.Kind == fe.Kind
	}
	return false
}

func NewConfigurationError(cause error) *FlowError {
	return &FlowError{
		Kind:    FlowErrConfiguration,
		Message: "federated login is not configured",
		Code:    http.StatusServiceUnavailable,
		cause:   cause,
	}
}

func NewUserCancelledError() *FlowError {
	return &FlowError{
		Kind:    FlowErrUserCancelled,
		Message: "authorization was cancelled",
		Code:    http.StatusBadRequest,
	}
}

func NewMalformedCallbackError(detail string) *FlowError {
	return &FlowError{
		Kind:    FlowErrMalformedCallback,
		Message: detail,
		Code:    http.StatusBadRequest,
	}
}

// NewStateInvalidError covers absent, expired, and already-consumed state
// tokens alike; the message must not reveal which.
func NewStateInvalidError() *FlowError {
	return &FlowError{
		Kind:    FlowErrStateInvalid,
		Message: "invalid or expired state parameter",
		Code:    http.StatusBadRequest,
	}
}

func NewTokenExchangeError(cause error) *FlowError {
	return &FlowError{
		Kind:    FlowErrTokenExchange,
		Message: "failed to exchange authorization code",
		Code:    http.StatusBadGateway,
		cause:   cause,
	}
}

func NewProfileFetchError(cause error) *FlowError {
	return &FlowError{
		Kind:    FlowErrProfileFetch,
		Message: "failed to fetch identity profile",
		Code:    http.StatusBadGateway,
		cause:   cause,
	}
}

func NewReconciliationError(cause error) *FlowError {
	return &FlowError{
		Kind:    FlowErrReconciliation,
		Message: "failed to reconcile account",
		Code:    http.StatusInternalServerError,
		cause:   cause,
	}
}

func NewAlreadyLinkedError() *FlowError {
	return &FlowError{
		Kind:    FlowErrAlreadyLinked,
		Message: "this identity is already linked to another account",
		Code:    http.StatusConflict,
	}
}

func NewUnlinkOnlyAuthMethodError() *FlowError {
	return &FlowError{
		Kind:    FlowErrUnlinkOnlyAuthMethod,
		Message: "set a password before unlinking the only sign-in method",
		Code:    http.StatusConflict,
	}
}

func NewNoLinkedAccountError() *FlowError {
	return &FlowError{
		Kind:    FlowErrNoLinkedAccount,
		Message: "no linked account found for this provider",
		Code:    http.StatusNotFound,
	}
}

func NewUnknownFlowError(cause error) *FlowError {
	return &FlowError{
		Kind:    FlowErrUnknown,
		Message: "authentication failed",
		Code:    http.StatusInternalServerError,
		cause:   cause,
	}
}

// FlowKindOf extracts the flow kind from an error chain, defaulting to
// FlowErrUnknown for anything untyped.
func FlowKindOf(err error) FlowErrorKind {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FlowErrUnknown
}

// GetFlowError extracts a FlowError from an error chain, or returns nil.
func GetFlowError(err error) *FlowError {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
