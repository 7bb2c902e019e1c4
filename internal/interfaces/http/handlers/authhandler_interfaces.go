package handlers

import (
	"context"

	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/flow"
)

// Use case interfaces for AuthHandler - enables unit testing with mocks.

type beginAuthorizationUseCase interface {
	Execute(ctx context.Context, cmd usecases.BeginAuthorizationCommand) (*usecases.BeginAuthorizationResult, error)
}

type handleCallbackUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleCallbackCommand) (*usecases.HandleCallbackResult, error)
}

type consumeCallbackSessionUseCase interface {
	Execute(ctx context.Context, cmd usecases.ConsumeCallbackSessionCommand) (*flow.CallbackSession, error)
}

type linkExternalIdentityUseCase interface {
	Execute(ctx context.Context, cmd usecases.LinkExternalIdentityCommand) error
}

type unlinkExternalIdentityUseCase interface {
	Execute(ctx context.Context, cmd usecases.UnlinkExternalIdentityCommand) error
}

type refreshSessionUseCase interface {
	Execute(ctx context.Context, cmd usecases.RefreshSessionCommand) (*usecases.RefreshSessionResult, error)
}

type setLocalSecretUseCase interface {
	Execute(ctx context.Context, cmd usecases.SetLocalSecretCommand) error
}
