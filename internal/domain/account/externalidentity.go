package account

import (
	"fmt"
	"strings"
)

// ExternalIdentity is the profile asserted by an identity provider after a
// completed authorization-code exchange. EmailVerified is the provider's
// own claim about the email; the flow itself only proves control of the
// external account, not of the mailbox.
type ExternalIdentity struct {
	Provider      string
	SubjectID     string
	Email         string
	Name          string
	AvatarURL     string
	Locale        string
	EmailVerified bool
}

// Validate checks the fields reconciliation depends on.
func (e ExternalIdentity) Validate() error {
	if e.Provider == "" {
		return fmt.Errorf("external identity missing provider")
	}
	if e.SubjectID == "" {
		return fmt.Errorf("external identity missing subject id")
	}
	if !strings.Contains(e.Email, "@") {
		return fmt.Errorf("external identity has invalid email %q", e.Email)
	}
	return nil
}

// NormalizedEmail returns the email lowercased for matching against local
// accounts.
func (e ExternalIdentity) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(e.Email))
}
