package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type UnlinkExternalIdentityCommand struct {
	AccountID     uint
	CorrelationID string
}

// UnlinkExternalIdentityUseCase detaches an account's external identity.
// An account that signs in only through the provider keeps its link: removal
// is allowed once a local secret exists so the account never becomes
// unreachable.
type UnlinkExternalIdentityUseCase struct {
	accounts  account.Repository
	provider  string
	auditSink audit.Sink
	notifier  Notifier
	logger    logger.Interface
}

func NewUnlinkExternalIdentityUseCase(
	accounts account.Repository,
	provider string,
	auditSink audit.Sink,
	notifier Notifier,
	log logger.Interface,
) *UnlinkExternalIdentityUseCase {
	return &UnlinkExternalIdentityUseCase{
		accounts:  accounts,
		provider:  provider,
		auditSink: auditSink,
		notifier:  notifier,
		logger:    log,
	}
}

func (uc *UnlinkExternalIdentityUseCase) Execute(ctx context.Context, cmd UnlinkExternalIdentityCommand) error {
	acct, err := uc.accounts.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return errors.NewNotFoundError("account not found")
	}

	link, err := uc.accounts.GetLinkByAccount(ctx, acct.ID(), uc.provider)
	if err != nil {
		return fmt.Errorf("lookup link: %w", err)
	}
	if link == nil {
		return uc.fail(ctx, cmd, acct.SID(), errors.NewNoLinkedAccountError())
	}

	if err := acct.DisableExternalAuth(); err != nil {
		if stderrors.Is(err, account.ErrNoLocalSecret) {
			return uc.fail(ctx, cmd, acct.SID(), errors.NewUnlinkOnlyAuthMethodError())
		}
		return fmt.Errorf("disable external auth: %w", err)
	}

	if err := uc.accounts.UnlinkExternal(ctx, acct, link.ID); err != nil {
		return fmt.Errorf("unlink: %w", err)
	}

	uc.auditSink.Record(ctx, audit.Event{
		Type:              audit.EventUnlink,
		Provider:          uc.provider,
		CorrelationID:     cmd.CorrelationID,
		AccountSID:        acct.SID(),
		ExternalSubjectID: link.SubjectID,
		Context:           map[string]any{"auth_method": acct.AuthMethod().String()},
		OccurredAt:        biztime.NowUTC(),
	})

	uc.logger.Infow("external identity unlinked",
		"provider", uc.provider,
		"account_sid", acct.SID(),
	)

	if uc.notifier != nil {
		if err := uc.notifier.SendIdentityUnlinked(ctx, acct.Email(), uc.provider); err != nil {
			uc.logger.Warnw("failed to send unlink notification", "error", err, "account_sid", acct.SID())
		}
	}

	return nil
}

func (uc *UnlinkExternalIdentityUseCase) fail(ctx context.Context, cmd UnlinkExternalIdentityCommand, accountSID string, err error) error {
	uc.auditSink.Record(ctx, audit.Event{
		Type:          audit.EventError,
		Provider:      uc.provider,
		CorrelationID: cmd.CorrelationID,
		AccountSID:    accountSID,
		Context:       map[string]any{"operation": "unlink"},
		Error:         err.Error(),
		OccurredAt:    biztime.NowUTC(),
	})
	return err
}
