package account

import "context"

// Repository owns lookup and mutation of accounts and their linked
// external identities. Lookups return (nil, nil) when nothing matches.
//
// CreateAccountWithLink, UpgradeToLinked, and UnlinkExternal are atomic:
// either every write in them lands or none does. Implementations must also
// enforce uniqueness of (provider, subject_id) and of email so that
// concurrent reconciliation cannot create duplicates; a losing concurrent
// writer surfaces a duplicate-key error the caller resolves by re-reading.
type Repository interface {
	GetByID(ctx context.Context, accountID uint) (*Account, error)
	GetBySID(ctx context.Context, sid string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByExternalIdentity resolves a (provider, subject id) pair to the
	// owning account and its link.
	GetByExternalIdentity(ctx context.Context, provider, subjectID string) (*Account, *LinkedAccount, error)
	GetLink(ctx context.Context, provider, subjectID string) (*LinkedAccount, error)
	GetLinkByAccount(ctx context.Context, accountID uint, provider string) (*LinkedAccount, error)

	// CreateAccountWithLink persists a brand-new account and its first
	// link in one transaction.
	CreateAccountWithLink(ctx context.Context, acct *Account, link *LinkedAccount) error

	// UpgradeToLinked persists the auth-method/verified/avatar mutations
	// on an existing account and creates its link in one transaction.
	UpgradeToLinked(ctx context.Context, acct *Account, link *LinkedAccount) error

	CreateLink(ctx context.Context, link *LinkedAccount) error
	UpdateLink(ctx context.Context, link *LinkedAccount) error

	// UnlinkExternal deletes the link and persists the account's downgrade
	// to password-only in one transaction.
	UnlinkExternal(ctx context.Context, acct *Account, linkID uint) error

	Update(ctx context.Context, acct *Account) error
	UpdateAuthMethod(ctx context.Context, acct *Account) error
}
