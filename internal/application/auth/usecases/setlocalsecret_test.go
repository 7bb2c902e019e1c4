package usecases_test

import (
	"context"
	"testing"

	"github.com/servana-inc/servana/internal/application/auth/testutil"
	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/shared/authorization"
	sharederrors "github.com/servana-inc/servana/internal/shared/errors"
)

func TestSetLocalSecret_UpgradesExternalOnlyAccount(t *testing.T) {
	repo := testutil.NewMockAccountRepository()
	acct, err := account.NewExternalAccount(testIdentity("sub-1"), authorization.RoleClient)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	repo.Seed(acct)

	uc := usecases.NewSetLocalSecretUseCase(repo, testutil.NewMockPasswordHasher(), testutil.NewMockLogger())

	err = uc.Execute(context.Background(), usecases.SetLocalSecretCommand{
		AccountID: acct.ID(),
		Password:  "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if acct.AuthMethod() != account.AuthMethodBoth {
		t.Errorf("auth method = %v, want %v", acct.AuthMethod(), account.AuthMethodBoth)
	}
	if acct.PasswordHash() == nil || *acct.PasswordHash() != "hashed:correct horse battery" {
		t.Errorf("password hash not stored: %v", acct.PasswordHash())
	}
}

func TestSetLocalSecret_PasswordTooShort(t *testing.T) {
	repo := testutil.NewMockAccountRepository()
	uc := usecases.NewSetLocalSecretUseCase(repo, testutil.NewMockPasswordHasher(), testutil.NewMockLogger())

	err := uc.Execute(context.Background(), usecases.SetLocalSecretCommand{AccountID: 1, Password: "short"})
	if err == nil {
		t.Fatal("Execute() expected validation error")
	}
}

func TestSetLocalSecret_AlreadySet(t *testing.T) {
	repo := testutil.NewMockAccountRepository()
	acct, err := account.NewLocalAccount("ada@example.com", "Ada", "hashed:pw", authorization.RoleClient)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	repo.Seed(acct)

	uc := usecases.NewSetLocalSecretUseCase(repo, testutil.NewMockPasswordHasher(), testutil.NewMockLogger())

	err = uc.Execute(context.Background(), usecases.SetLocalSecretCommand{
		AccountID: acct.ID(),
		Password:  "another password",
	})
	if !sharederrors.IsConflictError(err) {
		t.Errorf("err = %v, want conflict", err)
	}
}
