package account

import "fmt"

// AuthMethod marks which credentials an account can sign in with. The only
// legal transitions are LocalSecretOnly -> Both (first link), ExternalOnly
// -> Both (local secret set), and Both -> LocalSecretOnly (unlink).
type AuthMethod string

const (
	AuthMethodLocalSecretOnly AuthMethod = "LOCAL_SECRET_ONLY"
	AuthMethodExternalOnly    AuthMethod = "EXTERNAL_ONLY"
	AuthMethodBoth            AuthMethod = "BOTH"
)

func (m AuthMethod) String() string {
	return string(m)
}

func (m AuthMethod) IsValid() bool {
	switch m {
	case AuthMethodLocalSecretOnly, AuthMethodExternalOnly, AuthMethodBoth:
		return true
	}
	return false
}

// HasExternal reports whether the account can sign in through a linked
// external identity.
func (m AuthMethod) HasExternal() bool {
	return m == AuthMethodExternalOnly || m == AuthMethodBoth
}

// HasLocalSecret reports whether the account can sign in with a password.
func (m AuthMethod) HasLocalSecret() bool {
	return m == AuthMethodLocalSecretOnly || m == AuthMethodBoth
}

// ParseAuthMethod validates a persisted auth-method value.
func ParseAuthMethod(s string) (AuthMethod, error) {
	m := AuthMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid auth method: %q", s)
	}
	return m, nil
}
