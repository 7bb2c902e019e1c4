// Package account holds the local account aggregate and its linked
// external identities.
package account

import (
	"fmt"
	"strings"
	"time"

	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/id"
)

// Account is the aggregate root for a platform account. Persistence
// concerns live in the infrastructure models; this type only enforces the
// auth-method invariants.
type Account struct {
	accountID    uint
	sid          string
	email        string
	name         string
	avatarURL    string
	role         authorization.Role
	verified     bool
	authMethod   AuthMethod
	passwordHash *string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewExternalAccount creates an account provisioned through federated
// login. It starts external-only and pre-verified: the provider completed
// the authorization-code flow for this identity.
func NewExternalAccount(identity ExternalIdentity, role authorization.Role) (*Account, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		role = authorization.DefaultRole()
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = identity.NormalizedEmail()
	}

	now := biztime.NowUTC()
	return &Account{
		sid:        id.MustGenerateWithPrefix(id.PrefixAccount, id.DefaultLength),
		email:      identity.NormalizedEmail(),
		name:       name,
		avatarURL:  identity.AvatarURL,
		role:       role,
		verified:   true,
		authMethod: AuthMethodExternalOnly,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// NewLocalAccount creates an account with a password credential.
func NewLocalAccount(email, name, passwordHash string, role authorization.Role) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %q", email)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	if !role.IsValid() {
		role = authorization.DefaultRole()
	}

	now := biztime.NowUTC()
	return &Account{
		sid:          id.MustGenerateWithPrefix(id.PrefixAccount, id.DefaultLength),
		email:        email,
		name:         strings.TrimSpace(name),
		role:         role,
		authMethod:   AuthMethodLocalSecretOnly,
		passwordHash: &passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds an account from persistence.
func Reconstruct(
	accountID uint,
	sid string,
	email string,
	name string,
	avatarURL string,
	role authorization.Role,
	verified bool,
	authMethod AuthMethod,
	passwordHash *string,
	createdAt time.Time,
	updatedAt time.Time,
) (*Account, error) {
	if accountID == 0 {
		return nil, fmt.Errorf("account ID cannot be zero")
	}
	if !authMethod.IsValid() {
		return nil, fmt.Errorf("invalid auth method: %q", authMethod)
	}
	return &Account{
		accountID:    accountID,
		sid:          sid,
		email:        email,
		name:         name,
		avatarURL:    avatarURL,
		role:         role,
		verified:     verified,
		authMethod:   authMethod,
		passwordHash: passwordHash,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (a *Account) ID() uint                      { return a.accountID }
func (a *Account) SID() string                   { return a.sid }
func (a *Account) Email() string                 { return a.email }
func (a *Account) Name() string                  { return a.name }
func (a *Account) AvatarURL() string             { return a.avatarURL }
func (a *Account) Role() authorization.Role      { return a.role }
func (a *Account) Verified() bool                { return a.verified }
func (a *Account) AuthMethod() AuthMethod        { return a.authMethod }
func (a *Account) PasswordHash() *string         { return a.passwordHash }
func (a *Account) CreatedAt() time.Time          { return a.createdAt }
func (a *Account) UpdatedAt() time.Time          { return a.updatedAt }

// SetID syncs the auto-generated primary key back after the first insert.
func (a *Account) SetID(accountID uint) error {
	if a.accountID != 0 {
		return fmt.Errorf("account ID already set")
	}
	a.accountID = accountID
	return nil
}

// EnableExternalAuth records that an external identity was linked. A
// password-only account becomes BOTH; accounts already carrying an
// external method are unchanged.
func (a *Account) EnableExternalAuth() {
	if a.authMethod == AuthMethodLocalSecretOnly {
		a.authMethod = AuthMethodBoth
		a.touch()
	}
}

// DisableExternalAuth reverts to password-only sign-in on unlink. It
// refuses to strand an account with zero credentials.
func (a *Account) DisableExternalAuth() error {
	if !a.authMethod.HasExternal() {
		return ErrExternalNotEnabled
	}
	if !a.authMethod.HasLocalSecret() || a.passwordHash == nil {
		return ErrNoLocalSecret
	}
	a.authMethod = AuthMethodLocalSecretOnly
	a.touch()
	return nil
}

// SetLocalSecret installs a password on an external-only account, the only
// route from EXTERNAL_ONLY to BOTH.
func (a *Account) SetLocalSecret(passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if a.authMethod.HasLocalSecret() {
		return ErrLocalSecretAlreadySet
	}
	a.passwordHash = &passwordHash
	a.authMethod = AuthMethodBoth
	a.touch()
	return nil
}

// MarkVerified records externally attested email ownership.
func (a *Account) MarkVerified() {
	if !a.verified {
		a.verified = true
		a.touch()
	}
}

// BackfillAvatar sets the avatar from a provider profile when the account
// has none of its own.
func (a *Account) BackfillAvatar(avatarURL string) {
	if a.avatarURL == "" && avatarURL != "" {
		a.avatarURL = avatarURL
		a.touch()
	}
}

func (a *Account) touch() {
	a.updatedAt = biztime.NowUTC()
}
