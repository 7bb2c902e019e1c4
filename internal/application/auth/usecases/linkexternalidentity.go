package usecases

import (
	"context"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type LinkExternalIdentityCommand struct {
	AccountID     uint
	Identity      account.ExternalIdentity
	CorrelationID string
}

// LinkExternalIdentityUseCase attaches an external identity to an
// already-authenticated account. The uniqueness of (provider, subject id)
// is serialized through the repository's unique index: of two racing
// linkers, exactly one insert lands and the loser re-reads to find out who
// owns the pairing.
type LinkExternalIdentityUseCase struct {
	accounts  account.Repository
	auditSink audit.Sink
	notifier  Notifier
	logger    logger.Interface
}

func NewLinkExternalIdentityUseCase(
	accounts account.Repository,
	auditSink audit.Sink,
	notifier Notifier,
	log logger.Interface,
) *LinkExternalIdentityUseCase {
	return &LinkExternalIdentityUseCase{
		accounts:  accounts,
		auditSink: auditSink,
		notifier:  notifier,
		logger:    log,
	}
}

func (uc *LinkExternalIdentityUseCase) Execute(ctx context.Context, cmd LinkExternalIdentityCommand) error {
	if err := cmd.Identity.Validate(); err != nil {
		return errors.NewValidationError("invalid external identity", err.Error())
	}

	acct, err := uc.accounts.GetByID(ctx, cmd.AccountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	if acct == nil {
		return errors.NewNotFoundError("account not found")
	}

	existing, err := uc.accounts.GetLink(ctx, cmd.Identity.Provider, cmd.Identity.SubjectID)
	if err != nil {
		return fmt.Errorf("lookup link: %w", err)
	}
	if existing != nil {
		if existing.AccountID == acct.ID() {
			return nil // already linked to this account
		}
		return uc.fail(ctx, cmd, errors.NewAlreadyLinkedError())
	}

	ownLink, err := uc.accounts.GetLinkByAccount(ctx, acct.ID(), cmd.Identity.Provider)
	if err != nil {
		return fmt.Errorf("lookup account link: %w", err)
	}
	if ownLink != nil {
		return uc.fail(ctx, cmd, errors.NewConflictError(
			"account already has a linked identity for this provider"))
	}

	link, err := account.NewLinkedAccount(acct.ID(), cmd.Identity)
	if err != nil {
		return fmt.Errorf("build link: %w", err)
	}

	acct.EnableExternalAuth()
	if err := uc.accounts.UpgradeToLinked(ctx, acct, link); err != nil {
		if errors.IsDuplicateError(err) {
			// Lost the race. Whoever won owns the pairing now.
			winner, lookupErr := uc.accounts.GetLink(ctx, cmd.Identity.Provider, cmd.Identity.SubjectID)
			if lookupErr == nil && winner != nil && winner.AccountID == acct.ID() {
				return nil
			}
			return uc.fail(ctx, cmd, errors.NewAlreadyLinkedError())
		}
		return fmt.Errorf("create link: %w", err)
	}

	uc.auditSink.Record(ctx, audit.Event{
		Type:              audit.EventLink,
		Provider:          cmd.Identity.Provider,
		CorrelationID:     cmd.CorrelationID,
		AccountSID:        acct.SID(),
		ExternalSubjectID: cmd.Identity.SubjectID,
		Context:           map[string]any{"auth_method": acct.AuthMethod().String()},
		OccurredAt:        biztime.NowUTC(),
	})

	uc.logger.Infow("external identity linked",
		"provider", cmd.Identity.Provider,
		"account_sid", acct.SID(),
	)

	if uc.notifier != nil {
		if err := uc.notifier.SendIdentityLinked(ctx, acct.Email(), cmd.Identity.Provider); err != nil {
			uc.logger.Warnw("failed to send link notification", "error", err, "account_sid", acct.SID())
		}
	}

	return nil
}

func (uc *LinkExternalIdentityUseCase) fail(ctx context.Context, cmd LinkExternalIdentityCommand, err error) error {
	uc.auditSink.Record(ctx, audit.Event{
		Type:              audit.EventError,
		Provider:          cmd.Identity.Provider,
		CorrelationID:     cmd.CorrelationID,
		ExternalSubjectID: cmd.Identity.SubjectID,
		Context:           map[string]any{"operation": "link"},
		Error:             err.Error(),
		OccurredAt:        biztime.NowUTC(),
	})
	return err
}
