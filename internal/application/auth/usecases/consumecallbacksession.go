package usecases

import (
	"context"
	"fmt"

	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
)

type ConsumeCallbackSessionCommand struct {
	PickupToken string
}

// ConsumeCallbackSessionUseCase redeems the one-time token handed to the
// frontend after a successful callback and returns the session payload
// stashed under it. Redemption is atomic, so a replayed token finds nothing.
type ConsumeCallbackSessionUseCase struct {
	sessions CallbackSessionStore
	logger   logger.Interface
}

func NewConsumeCallbackSessionUseCase(sessions CallbackSessionStore, log logger.Interface) *ConsumeCallbackSessionUseCase {
	return &ConsumeCallbackSessionUseCase{sessions: sessions, logger: log}
}

func (uc *ConsumeCallbackSessionUseCase) Execute(ctx context.Context, cmd ConsumeCallbackSessionCommand) (*flow.CallbackSession, error) {
	if cmd.PickupToken == "" {
		return nil, errors.NewUnauthorizedError("missing session token")
	}

	session, err := uc.sessions.Consume(ctx, cmd.PickupToken)
	if err != nil {
		return nil, fmt.Errorf("consume callback session: %w", err)
	}
	if session == nil {
		uc.logger.Debugw("callback session token rejected")
		return nil, errors.NewUnauthorizedError("invalid or expired session token")
	}

	return session, nil
}
