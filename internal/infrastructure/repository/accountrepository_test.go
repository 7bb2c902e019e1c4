package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/mappers"
	"github.com/servana-inc/servana/internal/infrastructure/persistence/models"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.AccountModel{}, &models.LinkedAccountModel{}, &models.RefreshTokenModel{})
	require.NoError(t, err)

	return db
}

// seedAccount inserts an account directly, the way a registration flow
// outside this package would have.
func seedAccount(t *testing.T, db *gorm.DB, acct *account.Account) {
	t.Helper()
	model := mappers.NewAccountMapper().ToModel(acct)
	require.NoError(t, db.Create(model).Error)
	require.NoError(t, acct.SetID(model.ID))
}

func testIdentity(subjectID, email string) account.ExternalIdentity {
	return account.ExternalIdentity{
		Provider:      "google",
		SubjectID:     subjectID,
		Email:         email,
		Name:          "Test Account",
		EmailVerified: true,
	}
}

func TestAccountRepository_CreateAccountWithLink(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	identity := testIdentity("sub-1", "ada@example.com")
	acct, err := account.NewExternalAccount(identity, authorization.RoleClient)
	require.NoError(t, err)
	link, err := account.NewLinkedAccount(0, identity)
	require.NoError(t, err)

	err = repo.CreateAccountWithLink(ctx, acct, link)
	require.NoError(t, err)
	assert.NotZero(t, acct.ID())
	assert.Equal(t, acct.ID(), link.AccountID)

	found, foundLink, err := repo.GetByExternalIdentity(ctx, "google", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, acct.SID(), found.SID())
	assert.Equal(t, "ada@example.com", found.Email())
	assert.Equal(t, account.AuthMethodExternalOnly, found.AuthMethod())
	assert.Equal(t, uint(1), foundLink.LoginCount)
}

func TestAccountRepository_DuplicateSubjectRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	identity := testIdentity("sub-1", "ada@example.com")
	acct, err := account.NewExternalAccount(identity, authorization.RoleClient)
	require.NoError(t, err)
	link, err := account.NewLinkedAccount(0, identity)
	require.NoError(t, err)
	require.NoError(t, repo.CreateAccountWithLink(ctx, acct, link))

	// Same subject, different email: the (provider, subject_id) index
	// must reject the second insert.
	other := testIdentity("sub-1", "other@example.com")
	acct2, err := account.NewExternalAccount(other, authorization.RoleClient)
	require.NoError(t, err)
	link2, err := account.NewLinkedAccount(0, other)
	require.NoError(t, err)

	err = repo.CreateAccountWithLink(ctx, acct2, link2)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err), "expected duplicate-key error, got %v", err)
}

func TestAccountRepository_DuplicateEmailRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	identity := testIdentity("sub-1", "ada@example.com")
	acct, err := account.NewExternalAccount(identity, authorization.RoleClient)
	require.NoError(t, err)
	link, err := account.NewLinkedAccount(0, identity)
	require.NoError(t, err)
	require.NoError(t, repo.CreateAccountWithLink(ctx, acct, link))

	other := testIdentity("sub-2", "ada@example.com")
	acct2, err := account.NewExternalAccount(other, authorization.RoleClient)
	require.NoError(t, err)
	link2, err := account.NewLinkedAccount(0, other)
	require.NoError(t, err)

	err = repo.CreateAccountWithLink(ctx, acct2, link2)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err))

	// The failed transaction must not leave a dangling link behind.
	dangling, err := repo.GetLink(ctx, "google", "sub-2")
	require.NoError(t, err)
	assert.Nil(t, dangling)
}

func TestAccountRepository_UpgradeToLinked(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	local, err := account.NewLocalAccount("ada@example.com", "Ada", "hash", authorization.RoleClient)
	require.NoError(t, err)
	seedAccount(t, db, local)

	identity := testIdentity("sub-1", "ada@example.com")
	local.EnableExternalAuth()
	local.MarkVerified()
	link, err := account.NewLinkedAccount(local.ID(), identity)
	require.NoError(t, err)

	require.NoError(t, repo.UpgradeToLinked(ctx, local, link))

	found, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, account.AuthMethodBoth, found.AuthMethod())
	assert.True(t, found.Verified())

	foundLink, err := repo.GetLinkByAccount(ctx, local.ID(), "google")
	require.NoError(t, err)
	require.NotNil(t, foundLink)
	assert.Equal(t, "sub-1", foundLink.SubjectID)
}

func TestAccountRepository_UnlinkExternal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	local, err := account.NewLocalAccount("ada@example.com", "Ada", "hash", authorization.RoleClient)
	require.NoError(t, err)
	seedAccount(t, db, local)

	identity := testIdentity("sub-1", "ada@example.com")
	local.EnableExternalAuth()
	link, err := account.NewLinkedAccount(local.ID(), identity)
	require.NoError(t, err)
	require.NoError(t, repo.UpgradeToLinked(ctx, local, link))

	require.NoError(t, local.DisableExternalAuth())
	require.NoError(t, repo.UnlinkExternal(ctx, local, link.ID))

	found, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.AuthMethodLocalSecretOnly, found.AuthMethod())

	gone, err := repo.GetLink(ctx, "google", "sub-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestAccountRepository_LookupsReturnNilWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acct, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, acct)

	acct, link, err := repo.GetByExternalIdentity(ctx, "google", "ghost")
	require.NoError(t, err)
	assert.Nil(t, acct)
	assert.Nil(t, link)
}
