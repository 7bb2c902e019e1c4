package constants

// ProviderErrorCode is the error query parameter an authorization server
// appends to the callback redirect (RFC 6749 §4.1.2.1).
type ProviderErrorCode string

const (
	ProviderErrorAccessDenied       ProviderErrorCode = "access_denied"
	ProviderErrorInvalidRequest     ProviderErrorCode = "invalid_request"
	ProviderErrorUnauthorizedClient ProviderErrorCode = "unauthorized_client"
	ProviderErrorServerError        ProviderErrorCode = "server_error"
	ProviderErrorUnavailable        ProviderErrorCode = "temporarily_unavailable"
)

// IsUserCancellation reports whether the provider error code means the
// person declined the consent screen, as opposed to a provider fault.
func IsUserCancellation(code string) bool {
	return ProviderErrorCode(code) == ProviderErrorAccessDenied
}
