package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	// Context keys
	ContextKeyAccountID     = "account_id"
	ContextKeyAccountSID    = "account_sid"
	ContextKeyRole          = "role"
	ContextKeyCorrelationID = "correlation_id"
)
