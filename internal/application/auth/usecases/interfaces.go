package usecases

import (
	"context"
	"time"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/shared/authorization"
)

// StateStore persists anti-CSRF state records with a TTL enforced by the
// store itself, so abandoned flows self-clean. Consume must atomically
// read and delete: two concurrent consumers of the same token must never
// both receive the record.
type StateStore interface {
	Put(ctx context.Context, token string, record flow.StateRecord) error
	Consume(ctx context.Context, token string) (*flow.StateRecord, error)
	Delete(ctx context.Context, token string) error
}

// CallbackSessionStore holds completed logins pending one-time pickup,
// with the same atomic consume contract as StateStore but a shorter TTL.
type CallbackSessionStore interface {
	Put(ctx context.Context, token string, session flow.CallbackSession) error
	Consume(ctx context.Context, token string) (*flow.CallbackSession, error)
}

// IdentityProviderClient talks to the configured authorization and
// resource servers. Configured reports whether client credentials are
// present; every other method requires it.
type IdentityProviderClient interface {
	Provider() string
	Configured() bool
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
	FetchProfile(ctx context.Context, accessToken string) (*account.ExternalIdentity, error)
}

// TokenPair is a freshly minted local session credential pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresAt time.Time
}

// SessionIssuer mints bounded-lifetime local session tokens and verifies
// refresh tokens it previously minted.
type SessionIssuer interface {
	IssueTokens(accountSID string, role authorization.Role) (*TokenPair, error)
	VerifyRefresh(token string) (accountSID string, role authorization.Role, err error)
}

// RefreshTokenStore persists issued refresh tokens so they can be revoked
// and rotated.
type RefreshTokenStore interface {
	Persist(ctx context.Context, accountID uint, token string, expiresAt time.Time) error
	IsActive(ctx context.Context, accountID uint, token string) (bool, error)
	Rotate(ctx context.Context, accountID uint, oldToken, newToken string, expiresAt time.Time) error
}

// Notifier sends best-effort security and lifecycle email. Failures are
// logged, never surfaced to the flow.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendIdentityLinked(ctx context.Context, email, provider string) error
	SendIdentityUnlinked(ctx context.Context, email, provider string) error
}

// PasswordHasher hashes and verifies local secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
