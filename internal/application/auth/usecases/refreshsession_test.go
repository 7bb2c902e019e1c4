package usecases_test

import (
	"context"
	"testing"

	"github.com/servana-inc/servana/internal/application/auth/testutil"
	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/shared/authorization"
)

func TestRefreshSession_RotatesTokens(t *testing.T) {
	repo := testutil.NewMockAccountRepository()
	issuer := testutil.NewMockSessionIssuer()
	refreshStore := testutil.NewMockRefreshTokenStore()

	acct, err := account.NewExternalAccount(testIdentity("sub-1"), authorization.RoleClient)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	repo.Seed(acct)

	pair, err := issuer.IssueTokens(acct.SID(), acct.Role())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if err := refreshStore.Persist(context.Background(), acct.ID(), pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		t.Fatalf("persist refresh token: %v", err)
	}

	uc := usecases.NewRefreshSessionUseCase(repo, issuer, refreshStore, testutil.NewMockLogger())

	result, err := uc.Execute(context.Background(), usecases.RefreshSessionCommand{RefreshToken: pair.RefreshToken})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if result.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if result.AccessToken == "" {
		t.Error("empty access token")
	}

	// Old token is rotated out and must not work twice.
	if _, err := uc.Execute(context.Background(), usecases.RefreshSessionCommand{RefreshToken: pair.RefreshToken}); err == nil {
		t.Error("rotated-out refresh token accepted")
	}

	// The replacement works.
	if _, err := uc.Execute(context.Background(), usecases.RefreshSessionCommand{RefreshToken: result.RefreshToken}); err != nil {
		t.Errorf("rotated-in refresh token rejected: %v", err)
	}
}

func TestRefreshSession_UnknownToken(t *testing.T) {
	uc := usecases.NewRefreshSessionUseCase(
		testutil.NewMockAccountRepository(),
		testutil.NewMockSessionIssuer(),
		testutil.NewMockRefreshTokenStore(),
		testutil.NewMockLogger(),
	)

	if _, err := uc.Execute(context.Background(), usecases.RefreshSessionCommand{RefreshToken: "forged"}); err == nil {
		t.Error("forged refresh token accepted")
	}
}

func TestRefreshSession_VerifiableButInactiveToken(t *testing.T) {
	repo := testutil.NewMockAccountRepository()
	issuer := testutil.NewMockSessionIssuer()
	refreshStore := testutil.NewMockRefreshTokenStore()

	acct, err := account.NewExternalAccount(testIdentity("sub-1"), authorization.RoleClient)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	repo.Seed(acct)

	// Signed but never persisted, as after revocation.
	pair, err := issuer.IssueTokens(acct.SID(), acct.Role())
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	uc := usecases.NewRefreshSessionUseCase(repo, issuer, refreshStore, testutil.NewMockLogger())

	if _, err := uc.Execute(context.Background(), usecases.RefreshSessionCommand{RefreshToken: pair.RefreshToken}); err == nil {
		t.Error("revoked refresh token accepted")
	}
}
