package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type SetLocalSecretCommand struct {
	AccountID uint
	Password  string
}

// SetLocalSecretUseCase gives an externally-authenticated account a local
// password, moving it to dual auth so the external identity becomes
// removable.
type SetLocalSecretUseCase struct {
	accounts account.Repository
	hasher   PasswordHasher
	logger   logger.Interface
}

func NewSetLocalSecretUseCase(accounts account.Repository, hasher PasswordHasher, log logger.Interface) *SetLocalSecretUseCase {
	return &SetLocalSecretUseCase{accounts: accounts, hasher: hasher, logger: log}
}

func (uc *SetLocalSecretUseCase) Execute(ctx context.Context, cmd SetLocalSecretCommand) error {
	if len(cmd.Password) < 8 {
		return errors.NewValidationError("password too short", "password must be at least 8 characters")
	}

	acct, err := uc.accounts.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return errors.NewNotFoundError("account not found")
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := acct.SetLocalSecret(hash); err != nil {
		if stderrors.Is(err, account.ErrLocalSecretAlreadySet) {
			return errors.NewConflictError("a local password is already set")
		}
		return fmt.Errorf("set local secret: %w", err)
	}

	if err := uc.accounts.Update(ctx, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	uc.logger.Infow("local secret set", "account_sid", acct.SID(), "auth_method", acct.AuthMethod().String())
	return nil
}
