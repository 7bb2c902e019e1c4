package usecases

import (
	"context"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type RefreshSessionCommand struct {
	RefreshToken string
}

type RefreshSessionResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RefreshSessionUseCase exchanges a live refresh token for a new token
// pair. The old token is rotated out so each refresh token works once.
type RefreshSessionUseCase struct {
	accounts     account.Repository
	issuer       SessionIssuer
	refreshStore RefreshTokenStore
	logger       logger.Interface
}

func NewRefreshSessionUseCase(
	accounts account.Repository,
	issuer SessionIssuer,
	refreshStore RefreshTokenStore,
	log logger.Interface,
) *RefreshSessionUseCase {
	return &RefreshSessionUseCase{
		accounts:     accounts,
		issuer:       issuer,
		refreshStore: refreshStore,
		logger:       log,
	}
}

func (uc *RefreshSessionUseCase) Execute(ctx context.Context, cmd RefreshSessionCommand) (*RefreshSessionResult, error) {
	accountSID, _, err := uc.issuer.VerifyRefresh(cmd.RefreshToken)
	if err != nil {
		uc.logger.Debugw("refresh token rejected", "error", err)
		return nil, errors.NewUnauthorizedError("invalid or expired refresh token")
	}

	acct, err := uc.accounts.GetBySID(ctx, accountSID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		uc.logger.Warnw("account not found during refresh", "account_sid", accountSID)
		return nil, errors.NewUnauthorizedError("account not found")
	}

	active, err := uc.refreshStore.IsActive(ctx, acct.ID(), cmd.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("check refresh token: %w", err)
	}
	if !active {
		uc.logger.Warnw("inactive refresh token presented", "account_sid", accountSID)
		return nil, errors.NewUnauthorizedError("invalid or expired refresh token")
	}

	pair, err := uc.issuer.IssueTokens(acct.SID(), acct.Role())
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := uc.refreshStore.Rotate(ctx, acct.ID(), cmd.RefreshToken, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	uc.logger.Infow("session refreshed", "account_sid", acct.SID())

	return &RefreshSessionResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
