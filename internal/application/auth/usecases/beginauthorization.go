package usecases

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type BeginAuthorizationCommand struct {
	RequestedRole      authorization.Role
	RegistrationIntent bool
	ReturnTo           string
	CorrelationID      string
}

type BeginAuthorizationResult struct {
	AuthURL string
	State   string
}

// BeginAuthorizationUseCase issues the anti-CSRF state token and builds
// the provider authorization URL. Each call yields an independent state;
// it is safe to call repeatedly.
type BeginAuthorizationUseCase struct {
	client     IdentityProviderClient
	stateStore StateStore
	auditSink  audit.Sink
	logger     logger.Interface
}

func NewBeginAuthorizationUseCase(
	client IdentityProviderClient,
	stateStore StateStore,
	auditSink audit.Sink,
	log logger.Interface,
) *BeginAuthorizationUseCase {
	return &BeginAuthorizationUseCase{
		client:     client,
		stateStore: stateStore,
		auditSink:  auditSink,
		logger:     log,
	}
}

func (uc *BeginAuthorizationUseCase) Execute(ctx context.Context, cmd BeginAuthorizationCommand) (*BeginAuthorizationResult, error) {
	if !uc.client.Configured() {
		uc.logger.Errorw("federated login initiated without provider credentials",
			"provider", uc.client.Provider(),
		)
		return nil, errors.NewConfigurationError(nil)
	}

	state, err := generateStateToken()
	if err != nil {
		uc.logger.Errorw("failed to generate state token", "error", err)
		return nil, errors.NewUnknownFlowError(fmt.Errorf("generate state: %w", err))
	}

	role := cmd.RequestedRole
	if !role.IsValid() {
		role = authorization.DefaultRole()
	}

	record := flow.StateRecord{
		Token:              state,
		RequestedRole:      role,
		RegistrationIntent: cmd.RegistrationIntent,
		ReturnTo:           cmd.ReturnTo,
		CreatedAt:          biztime.NowUTC(),
	}

	if err := uc.stateStore.Put(ctx, state, record); err != nil {
		uc.logger.Errorw("failed to store state record", "error", err)
		return nil, errors.NewUnknownFlowError(fmt.Errorf("store state: %w", err))
	}

	uc.auditSink.Record(ctx, audit.Event{
		Type:          audit.EventInitiate,
		Provider:      uc.client.Provider(),
		CorrelationID: cmd.CorrelationID,
		Context: map[string]any{
			"requested_role":      role.String(),
			"registration_intent": cmd.RegistrationIntent,
		},
		OccurredAt: biztime.NowUTC(),
	})

	uc.logger.Infow("federated login initiated",
		"provider", uc.client.Provider(),
		"correlation_id", cmd.CorrelationID,
		"requested_role", role.String(),
	)

	return &BeginAuthorizationResult{
		AuthURL: uc.client.AuthCodeURL(state),
		State:   state,
	}, nil
}

// generateStateToken returns 256 bits of cryptographic randomness in a
// URL-safe encoding.
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
