package account

import "errors"

var (
	// ErrNoLocalSecret is returned when an operation requires a password
	// to be set first, e.g. removing the only external sign-in method.
	ErrNoLocalSecret = errors.New("account has no local secret")

	// ErrExternalNotEnabled is returned when downgrading an account that
	// has no external auth method to remove.
	ErrExternalNotEnabled = errors.New("external auth is not enabled for account")

	// ErrLocalSecretAlreadySet guards against silently replacing an
	// existing password through the set-local-secret path.
	ErrLocalSecretAlreadySet = errors.New("local secret is already set")
)
