package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptestutil "github.com/servana-inc/servana/internal/application/auth/testutil"
	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/interfaces/http/handlers/testutil"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockBeginUC struct {
	result *usecases.BeginAuthorizationResult
	err    error
}

func (m *mockBeginUC) Execute(ctx context.Context, cmd usecases.BeginAuthorizationCommand) (*usecases.BeginAuthorizationResult, error) {
	return m.result, m.err
}

type mockCallbackUC struct {
	result  *usecases.HandleCallbackResult
	err     error
	lastCmd usecases.HandleCallbackCommand
}

func (m *mockCallbackUC) Execute(ctx context.Context, cmd usecases.HandleCallbackCommand) (*usecases.HandleCallbackResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockPickupUC struct {
	session *flow.CallbackSession
	err     error
}

func (m *mockPickupUC) Execute(ctx context.Context, cmd usecases.ConsumeCallbackSessionCommand) (*flow.CallbackSession, error) {
	return m.session, m.err
}

type mockLinkUC struct {
	err     error
	lastCmd usecases.LinkExternalIdentityCommand
}

func (m *mockLinkUC) Execute(ctx context.Context, cmd usecases.LinkExternalIdentityCommand) error {
	m.lastCmd = cmd
	return m.err
}

type mockUnlinkUC struct {
	err error
}

func (m *mockUnlinkUC) Execute(ctx context.Context, cmd usecases.UnlinkExternalIdentityCommand) error {
	return m.err
}

type mockRefreshUC struct {
	result *usecases.RefreshSessionResult
	err    error
}

func (m *mockRefreshUC) Execute(ctx context.Context, cmd usecases.RefreshSessionCommand) (*usecases.RefreshSessionResult, error) {
	return m.result, m.err
}

type mockSetSecretUC struct {
	err error
}

func (m *mockSetSecretUC) Execute(ctx context.Context, cmd usecases.SetLocalSecretCommand) error {
	return m.err
}

// =====================================================================
// Fixture
// =====================================================================

const testFrontendURL = "https://app.example.com/auth/callback"

type handlerFixture struct {
	begin     *mockBeginUC
	callback  *mockCallbackUC
	pickup    *mockPickupUC
	link      *mockLinkUC
	unlink    *mockUnlinkUC
	refresh   *mockRefreshUC
	setSecret *mockSetSecretUC
	repo      *apptestutil.MockAccountRepository
	client    *apptestutil.MockIdentityProviderClient
	sessions  *apptestutil.MockCallbackSessionStore
	handler   *AuthHandler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		begin:     &mockBeginUC{},
		callback:  &mockCallbackUC{},
		pickup:    &mockPickupUC{},
		link:      &mockLinkUC{},
		unlink:    &mockUnlinkUC{},
		refresh:   &mockRefreshUC{},
		setSecret: &mockSetSecretUC{},
		repo:      apptestutil.NewMockAccountRepository(),
		client:    apptestutil.NewMockIdentityProviderClient(),
		sessions:  apptestutil.NewMockCallbackSessionStore(),
	}
	f.handler = NewAuthHandler(
		f.begin, f.callback, f.pickup, f.link, f.unlink, f.refresh, f.setSecret,
		f.repo, f.client, f.sessions,
		testFrontendURL, testutil.NewMockLogger())
	return f
}

func (f *handlerFixture) seedAccount(t *testing.T) *account.Account {
	t.Helper()
	acct, err := account.NewLocalAccount("ada@example.com", "Ada", "hashed:pw", authorization.RoleClient)
	require.NoError(t, err)
	f.repo.Seed(acct)
	return acct
}

func callbackResult(acct *account.Account) *usecases.HandleCallbackResult {
	return &usecases.HandleCallbackResult{
		Account:      acct,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
		IsNewUser:    true,
	}
}

// =====================================================================
// Tests
// =====================================================================

func TestAuthHandler_InitiateLogin_RedirectsToProvider(t *testing.T) {
	f := newHandlerFixture()
	f.begin.result = &usecases.BeginAuthorizationResult{
		AuthURL: "https://accounts.google.com/o/oauth2/auth?state=abc",
		State:   "abc",
	}

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/oauth/google", nil)
	f.handler.InitiateLogin(c)

	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, f.begin.result.AuthURL, w.Header().Get("Location"))
}

func TestAuthHandler_InitiateLogin_NotConfigured(t *testing.T) {
	f := newHandlerFixture()
	f.begin.err = errors.NewConfigurationError(nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/oauth/google", nil)
	f.handler.InitiateLogin(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthHandler_HandleCallback_RedirectsWithPickupToken(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)
	f.callback.result = callbackResult(acct)

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/oauth/google/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "the-code", "state": "the-state"})
	f.handler.HandleCallback(c)

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location.String(), testFrontendURL))

	pickupToken := location.Query().Get("session")
	require.NotEmpty(t, pickupToken)
	assert.Empty(t, location.Query().Get("error"))

	// The redirect URL carries only the pickup token; the tokens
	// themselves are stashed server-side.
	assert.NotContains(t, location.String(), "access-token")

	session, err := f.sessions.Consume(context.Background(), pickupToken)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "access-token", session.AccessToken)
	assert.Equal(t, "refresh-token", session.RefreshToken)
	assert.Equal(t, acct.SID(), session.Account.SID)
	assert.True(t, session.IsNewUser)

	assert.Equal(t, "the-code", f.callback.lastCmd.Code)
	assert.Equal(t, "the-state", f.callback.lastCmd.State)
}

func TestAuthHandler_HandleCallback_FlowErrorRedirects(t *testing.T) {
	f := newHandlerFixture()
	f.callback.err = errors.NewStateInvalidError()

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/oauth/google/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"code": "the-code", "state": "stale"})
	f.handler.HandleCallback(c)

	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, string(errors.FlowErrStateInvalid), location.Query().Get("error"))
	assert.Empty(t, location.Query().Get("session"))
}

func TestAuthHandler_HandleCallback_ProviderErrorForwarded(t *testing.T) {
	f := newHandlerFixture()
	f.callback.err = errors.NewUserCancelledError()

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/oauth/google/callback", nil)
	testutil.SetQueryParams(c, map[string]string{"error": "access_denied"})
	f.handler.HandleCallback(c)

	require.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, string(errors.FlowErrUserCancelled), location.Query().Get("error"))
	assert.Equal(t, "access_denied", f.callback.lastCmd.ProviderError)
}

func TestAuthHandler_PickupSession_ReturnsTokens(t *testing.T) {
	f := newHandlerFixture()
	f.pickup.session = &flow.CallbackSession{
		Account:      flow.AccountSnapshot{SID: "acct_1", Email: "ada@example.com"},
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
		CreatedAt:    time.Now().UTC(),
	}

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/session", PickupSessionRequest{Token: "pickup-token"})
	f.handler.PickupSession(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), "access-token")
}

func TestAuthHandler_PickupSession_InvalidToken(t *testing.T) {
	f := newHandlerFixture()
	f.pickup.err = errors.NewUnauthorizedError("invalid or expired session token")

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/session", PickupSessionRequest{Token: "replayed"})
	f.handler.PickupSession(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh_ReturnsNewPair(t *testing.T) {
	f := newHandlerFixture()
	f.refresh.result = &usecases.RefreshSessionResult{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresIn:    900,
	}

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: "old-refresh"})
	f.handler.Refresh(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), "new-access")
	assert.Contains(t, string(resp.Data), "new-refresh")
}

func TestAuthHandler_Refresh_Rejected(t *testing.T) {
	f := newHandlerFixture()
	f.refresh.err = errors.NewUnauthorizedError("invalid or expired refresh token")

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: "bogus"})
	f.handler.Refresh(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func testProfile() *account.ExternalIdentity {
	return &account.ExternalIdentity{
		Provider:      "google",
		SubjectID:     "sub-123",
		Email:         "ada@example.com",
		Name:          "Ada",
		EmailVerified: true,
	}
}

func TestAuthHandler_Link_Success(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)
	f.client.Profile = testProfile()

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/link", LinkRequest{AccessToken: "provider-token"})
	testutil.SetAuthContext(c, acct.SID())
	f.handler.Link(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, acct.ID(), f.link.lastCmd.AccountID)
	assert.Equal(t, "google", f.link.lastCmd.Identity.Provider)
}

func TestAuthHandler_Link_TakenByAnotherAccount(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)
	f.client.Profile = testProfile()
	f.link.err = errors.NewAlreadyLinkedError()

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/link", LinkRequest{AccessToken: "provider-token"})
	testutil.SetAuthContext(c, acct.SID())
	f.handler.Link(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Link_RequiresAuth(t *testing.T) {
	f := newHandlerFixture()

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/link", LinkRequest{AccessToken: "provider-token"})
	f.handler.Link(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Unlink_OnlyAuthMethod(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)
	f.unlink.err = errors.NewUnlinkOnlyAuthMethodError()

	c, w := testutil.NewTestContext(http.MethodDelete, "/auth/link", nil)
	testutil.SetAuthContext(c, acct.SID())
	f.handler.Unlink(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Unlink_NoLink(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)
	f.unlink.err = errors.NewNoLinkedAccountError()

	c, w := testutil.NewTestContext(http.MethodDelete, "/auth/link", nil)
	testutil.SetAuthContext(c, acct.SID())
	f.handler.Unlink(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_SetPassword_Success(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/password", SetPasswordRequest{Password: "correct horse battery"})
	testutil.SetAuthContext(c, acct.SID())
	f.handler.SetPassword(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_SetPassword_TooShort(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/password", SetPasswordRequest{Password: "short"})
	testutil.SetAuthContext(c, acct.SID())
	f.handler.SetPassword(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_GetCurrentAccount(t *testing.T) {
	f := newHandlerFixture()
	acct := f.seedAccount(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/me", nil)
	testutil.SetAuthContext(c, acct.SID())
	f.handler.GetCurrentAccount(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.Contains(t, string(resp.Data), acct.SID())
	assert.Contains(t, string(resp.Data), "ada@example.com")
}

func TestAuthHandler_GetCurrentAccount_UnknownSID(t *testing.T) {
	f := newHandlerFixture()

	c, w := testutil.NewTestContext(http.MethodGet, "/auth/me", nil)
	testutil.SetAuthContext(c, "acct_missing")
	f.handler.GetCurrentAccount(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
