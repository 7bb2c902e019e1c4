package account

import (
	"fmt"
	"time"

	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/id"
)

// LinkedAccount associates one (provider, subject id) pair with exactly
// one local account. The pairing is globally unique; the repository
// enforces it with a unique index so concurrent writers cannot both win.
type LinkedAccount struct {
	ID            uint
	SID           string
	AccountID     uint
	Provider      string
	SubjectID     string
	Email         string
	DisplayName   string
	AvatarURL     string
	EmailVerified bool
	LastLoginAt   *time.Time
	LoginCount    uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLinkedAccount creates a link from an external identity. AccountID may
// still be zero when the owning account is created in the same
// transaction.
func NewLinkedAccount(accountID uint, identity ExternalIdentity) (*LinkedAccount, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("invalid external identity: %w", err)
	}

	now := biztime.NowUTC()
	return &LinkedAccount{
		SID:           id.MustGenerateWithPrefix(id.PrefixLinkedAccount, id.DefaultLength),
		AccountID:     accountID,
		Provider:      identity.Provider,
		SubjectID:     identity.SubjectID,
		Email:         identity.NormalizedEmail(),
		DisplayName:   identity.Name,
		AvatarURL:     identity.AvatarURL,
		EmailVerified: identity.EmailVerified,
		LastLoginAt:   &now,
		LoginCount:    1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RecordLogin bumps the login bookkeeping on a successful callback.
func (l *LinkedAccount) RecordLogin() {
	now := biztime.NowUTC()
	l.LoginCount++
	l.LastLoginAt = &now
	l.UpdatedAt = now
}
