package usecases

import (
	"context"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/constants"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type HandleCallbackCommand struct {
	Code             string
	State            string
	ProviderError    string
	ProviderErrorDsc string
	CorrelationID    string
}

type HandleCallbackResult struct {
	Account      *account.Account
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	IsNewUser    bool
	ReturnTo     string
}

// HandleCallbackUseCase drives the callback state machine: provider error
// classification, one-time state consumption, code exchange, profile
// fetch, account reconciliation, and local session issuance. Every failure
// is recorded as an ERROR audit event before it is returned; nothing is
// retried here.
type HandleCallbackUseCase struct {
	client       IdentityProviderClient
	stateStore   StateStore
	accounts     account.Repository
	issuer       SessionIssuer
	refreshStore RefreshTokenStore
	auditSink    audit.Sink
	notifier     Notifier
	logger       logger.Interface
}

func NewHandleCallbackUseCase(
	client IdentityProviderClient,
	stateStore StateStore,
	accounts account.Repository,
	issuer SessionIssuer,
	refreshStore RefreshTokenStore,
	auditSink audit.Sink,
	notifier Notifier,
	log logger.Interface,
) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{
		client:       client,
		stateStore:   stateStore,
		accounts:     accounts,
		issuer:       issuer,
		refreshStore: refreshStore,
		auditSink:    auditSink,
		notifier:     notifier,
		logger:       log,
	}
}

func (uc *HandleCallbackUseCase) Execute(ctx context.Context, cmd HandleCallbackCommand) (*HandleCallbackResult, error) {
	if !uc.client.Configured() {
		return nil, uc.fail(ctx, cmd, errors.NewConfigurationError(nil), nil)
	}

	if cmd.ProviderError != "" {
		if constants.IsUserCancellation(cmd.ProviderError) {
			uc.logger.Infow("authorization cancelled at provider",
				"provider", uc.client.Provider(),
				"correlation_id", cmd.CorrelationID,
			)
			return nil, uc.fail(ctx, cmd, errors.NewUserCancelledError(), nil)
		}
		cause := fmt.Errorf("provider error %q: %s", cmd.ProviderError, cmd.ProviderErrorDsc)
		return nil, uc.fail(ctx, cmd, errors.NewUnknownFlowError(cause), nil)
	}

	if cmd.Code == "" {
		return nil, uc.fail(ctx, cmd, errors.NewMalformedCallbackError("missing authorization code"), nil)
	}
	if cmd.State == "" {
		return nil, uc.fail(ctx, cmd, errors.NewMalformedCallbackError("missing state parameter"), nil)
	}

	// One-time use: consume is a single atomic read-and-delete in the
	// store. A replayed state, an expired one, and one that never existed
	// are indistinguishable from here on.
	record, err := uc.stateStore.Consume(ctx, cmd.State)
	if err != nil {
		uc.logger.Errorw("state store failure", "error", err, "correlation_id", cmd.CorrelationID)
		return nil, uc.fail(ctx, cmd, errors.NewUnknownFlowError(err), nil)
	}
	if record == nil {
		return nil, uc.fail(ctx, cmd, errors.NewStateInvalidError(), nil)
	}

	accessToken, err := uc.client.ExchangeCode(ctx, cmd.Code)
	if err != nil {
		// Authorization codes are single-use at the provider; retrying
		// with the same code cannot succeed.
		return nil, uc.fail(ctx, cmd, errors.NewTokenExchangeError(err), nil)
	}

	identity, err := uc.client.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, uc.fail(ctx, cmd, errors.NewProfileFetchError(err), nil)
	}

	acct, isNewUser, err := uc.reconcile(ctx, *identity, record.RequestedRole)
	if err != nil {
		return nil, uc.fail(ctx, cmd, err, identity)
	}

	tokens, err := uc.issuer.IssueTokens(acct.SID(), acct.Role())
	if err != nil {
		uc.logger.Errorw("failed to issue session tokens", "error", err, "account_sid", acct.SID())
		return nil, uc.fail(ctx, cmd, errors.NewUnknownFlowError(err), identity)
	}

	if err := uc.refreshStore.Persist(ctx, acct.ID(), tokens.RefreshToken, tokens.RefreshExpiresAt); err != nil {
		uc.logger.Errorw("failed to persist refresh token", "error", err, "account_sid", acct.SID())
		return nil, uc.fail(ctx, cmd, errors.NewUnknownFlowError(err), identity)
	}

	uc.auditSink.Record(ctx, audit.Event{
		Type:              audit.EventSuccess,
		Provider:          uc.client.Provider(),
		CorrelationID:     cmd.CorrelationID,
		AccountSID:        acct.SID(),
		ExternalSubjectID: identity.SubjectID,
		Context: map[string]any{
			"is_new_user": isNewUser,
			"auth_method": acct.AuthMethod().String(),
		},
		OccurredAt: biztime.NowUTC(),
	})

	uc.logger.Infow("federated login completed",
		"provider", uc.client.Provider(),
		"correlation_id", cmd.CorrelationID,
		"account_sid", acct.SID(),
		"is_new_user", isNewUser,
	)

	if isNewUser && uc.notifier != nil {
		if err := uc.notifier.SendWelcome(ctx, acct.Email(), acct.Name()); err != nil {
			uc.logger.Warnw("failed to send welcome email", "error", err, "account_sid", acct.SID())
		}
	}

	return &HandleCallbackResult{
		Account:      acct,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		IsNewUser:    isNewUser,
		ReturnTo:     record.ReturnTo,
	}, nil
}

// fail records the ERROR audit event for err and returns it unchanged.
func (uc *HandleCallbackUseCase) fail(ctx context.Context, cmd HandleCallbackCommand, err error, identity *account.ExternalIdentity) error {
	event := audit.Event{
		Type:          audit.EventError,
		Provider:      uc.client.Provider(),
		CorrelationID: cmd.CorrelationID,
		Context:       map[string]any{"kind": string(errors.FlowKindOf(err))},
		Error:         err.Error(),
		OccurredAt:    biztime.NowUTC(),
	}
	if identity != nil {
		event.ExternalSubjectID = identity.SubjectID
	}
	uc.auditSink.Record(ctx, event)
	return err
}

// reconcile maps the external identity onto a local account: login through
// an existing link, upgrade of an email-matching local account, or
// creation of a brand-new account. A writer losing a uniqueness race
// re-reads and resolves as an existing link.
func (uc *HandleCallbackUseCase) reconcile(ctx context.Context, identity account.ExternalIdentity, requestedRole authorization.Role) (*account.Account, bool, error) {
	for attempt := 0; ; attempt++ {
		acct, link, err := uc.accounts.GetByExternalIdentity(ctx, identity.Provider, identity.SubjectID)
		if err != nil {
			return nil, false, errors.NewReconciliationError(fmt.Errorf("lookup by external identity: %w", err))
		}
		if acct != nil {
			link.RecordLogin()
			if updateErr := uc.accounts.UpdateLink(ctx, link); updateErr != nil {
				uc.logger.Warnw("failed to record login on link", "error", updateErr, "link_sid", link.SID)
			}
			return acct, false, nil
		}

		existing, err := uc.accounts.GetByEmail(ctx, identity.NormalizedEmail())
		if err != nil {
			return nil, false, errors.NewReconciliationError(fmt.Errorf("lookup by email: %w", err))
		}

		if existing != nil {
			// An account holds at most one link per provider. An email
			// match against an account already linked to a different
			// subject from this provider is not mergeable.
			ownLink, err := uc.accounts.GetLinkByAccount(ctx, existing.ID(), identity.Provider)
			if err != nil {
				return nil, false, errors.NewReconciliationError(fmt.Errorf("lookup account link: %w", err))
			}
			if ownLink != nil {
				uc.logger.Warnw("refusing account upgrade, provider already linked",
					"provider", identity.Provider,
					"external_subject_id", identity.SubjectID,
					"account_sid", existing.SID(),
				)
				return nil, false, errors.NewReconciliationError(fmt.Errorf("account already linked to a different %s identity", identity.Provider))
			}

			// Merging into an existing local account treats the provider
			// as an email-ownership oracle, so the provider must assert
			// the email as verified.
			if !identity.EmailVerified {
				uc.logger.Warnw("refusing account upgrade for unverified provider email",
					"provider", identity.Provider,
					"external_subject_id", identity.SubjectID,
				)
				return nil, false, errors.NewReconciliationError(fmt.Errorf("provider email not verified for existing account merge"))
			}

			existing.EnableExternalAuth()
			existing.MarkVerified()
			existing.BackfillAvatar(identity.AvatarURL)

			newLink, err := account.NewLinkedAccount(existing.ID(), identity)
			if err != nil {
				return nil, false, errors.NewReconciliationError(fmt.Errorf("build link: %w", err))
			}

			if err := uc.accounts.UpgradeToLinked(ctx, existing, newLink); err != nil {
				if errors.IsDuplicateError(err) && attempt == 0 {
					continue // lost the race, resolve as existing link
				}
				return nil, false, errors.NewReconciliationError(fmt.Errorf("upgrade to linked: %w", err))
			}
			return existing, false, nil
		}

		created, err := account.NewExternalAccount(identity, requestedRole)
		if err != nil {
			return nil, false, errors.NewReconciliationError(fmt.Errorf("build account: %w", err))
		}
		newLink, err := account.NewLinkedAccount(0, identity)
		if err != nil {
			return nil, false, errors.NewReconciliationError(fmt.Errorf("build link: %w", err))
		}

		if err := uc.accounts.CreateAccountWithLink(ctx, created, newLink); err != nil {
			if errors.IsDuplicateError(err) && attempt == 0 {
				continue // concurrent first login for the same identity
			}
			return nil, false, errors.NewReconciliationError(fmt.Errorf("create account with link: %w", err))
		}
		return created, true, nil
	}
}
