package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/account"
	"github.com/servana-inc/servana/internal/domain/flow"
	"github.com/servana-inc/servana/internal/shared/authorization"
	"github.com/servana-inc/servana/internal/shared/biztime"
	"github.com/servana-inc/servana/internal/shared/constants"
	"github.com/servana-inc/servana/internal/shared/errors"
	"github.com/servana-inc/servana/internal/shared/logger"
	"github.com/servana-inc/servana/internal/shared/utils"
)

type AuthHandler struct {
	beginUseCase     beginAuthorizationUseCase
	callbackUseCase  handleCallbackUseCase
	pickupUseCase    consumeCallbackSessionUseCase
	linkUseCase      linkExternalIdentityUseCase
	unlinkUseCase    unlinkExternalIdentityUseCase
	refreshUseCase   refreshSessionUseCase
	setSecretUseCase setLocalSecretUseCase
	accounts         account.Repository
	providerClient   usecases.IdentityProviderClient
	callbackSessions usecases.CallbackSessionStore
	frontendCallback string
	logger           logger.Interface
}

func NewAuthHandler(
	beginUC beginAuthorizationUseCase,
	callbackUC handleCallbackUseCase,
	pickupUC consumeCallbackSessionUseCase,
	linkUC linkExternalIdentityUseCase,
	unlinkUC unlinkExternalIdentityUseCase,
	refreshUC refreshSessionUseCase,
	setSecretUC setLocalSecretUseCase,
	accounts account.Repository,
	providerClient usecases.IdentityProviderClient,
	callbackSessions usecases.CallbackSessionStore,
	frontendCallbackURL string,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		beginUseCase:     beginUC,
		callbackUseCase:  callbackUC,
		pickupUseCase:    pickupUC,
		linkUseCase:      linkUC,
		unlinkUseCase:    unlinkUC,
		refreshUseCase:   refreshUC,
		setSecretUseCase: setSecretUC,
		accounts:         accounts,
		providerClient:   providerClient,
		callbackSessions: callbackSessions,
		frontendCallback: frontendCallbackURL,
		logger:           logger,
	}
}

type PickupSessionRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LinkRequest struct {
	// AccessToken is a provider access token freshly obtained by the
	// client. The server verifies it by fetching the profile from the
	// provider itself, so a fabricated token links nothing.
	AccessToken string `json:"access_token" binding:"required"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required" validate:"required,min=8"`
}

// InitiateLogin issues the anti-CSRF state and redirects the browser to
// the provider's consent screen.
func (h *AuthHandler) InitiateLogin(c *gin.Context) {
	cmd := usecases.BeginAuthorizationCommand{
		RequestedRole:      authorization.ParseRole(c.Query("role")),
		RegistrationIntent: c.Query("register") == "true",
		ReturnTo:           c.Query("return_to"),
		CorrelationID:      c.GetString(constants.ContextKeyCorrelationID),
	}

	result, err := h.beginUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.logger.Errorw("login initiation failed", "error", err)
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "external login is not available")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, result.AuthURL)
}

// HandleCallback drives the provider redirect through the callback state
// machine and hands the outcome to the frontend via a one-time pickup
// token. Tokens never appear in the redirect URL itself.
func (h *AuthHandler) HandleCallback(c *gin.Context) {
	correlationID := c.GetString(constants.ContextKeyCorrelationID)

	cmd := usecases.HandleCallbackCommand{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		ProviderError:    c.Query("error"),
		ProviderErrorDsc: c.Query("error_description"),
		CorrelationID:    correlationID,
	}

	result, err := h.callbackUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		kind := errors.FlowKindOf(err)
		h.logger.Warnw("callback rejected",
			"kind", string(kind),
			"error", err,
			"correlation_id", correlationID,
		)
		h.redirectWithError(c, kind)
		return
	}

	session := flow.CallbackSession{
		Account:      snapshotOf(result.Account),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		IsNewUser:    result.IsNewUser,
		ReturnTo:     result.ReturnTo,
		CreatedAt:    biztime.NowUTC(),
	}

	pickupToken, err := generatePickupToken()
	if err != nil {
		h.logger.Errorw("failed to generate pickup token", "error", err, "correlation_id", correlationID)
		h.redirectWithError(c, errors.FlowErrUnknown)
		return
	}

	if err := h.callbackSessions.Put(c.Request.Context(), pickupToken, session); err != nil {
		h.logger.Errorw("failed to stash callback session", "error", err, "correlation_id", correlationID)
		h.redirectWithError(c, errors.FlowErrUnknown)
		return
	}

	redirect, _ := url.Parse(h.frontendCallback)
	q := redirect.Query()
	q.Set("session", pickupToken)
	redirect.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

// PickupSession redeems the one-time token from the callback redirect and
// returns the issued tokens plus the account snapshot.
func (h *AuthHandler) PickupSession(c *gin.Context) {
	var req PickupSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.pickupUseCase.Execute(c.Request.Context(), usecases.ConsumeCallbackSessionCommand{
		PickupToken: req.Token,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", gin.H{
		"account":       session.Account,
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"expires_in":    session.ExpiresIn,
		"is_new_user":   session.IsNewUser,
		"return_to":     session.ReturnTo,
	})
}

// Refresh rotates a refresh token and returns a fresh token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "refresh token is required")
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), usecases.RefreshSessionCommand{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.logger.Warnw("token refresh rejected", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "token refreshed successfully", gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

// Link attaches an external identity to the authenticated account.
func (h *AuthHandler) Link(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.providerClient.FetchProfile(c.Request.Context(), req.AccessToken)
	if err != nil {
		h.logger.Warnw("link profile fetch failed", "error", err, "account_sid", acct.SID())
		utils.ErrorResponse(c, http.StatusBadGateway, "could not verify identity with provider")
		return
	}

	cmd := usecases.LinkExternalIdentityCommand{
		AccountID:     acct.ID(),
		Identity:      *identity,
		CorrelationID: c.GetString(constants.ContextKeyCorrelationID),
	}

	if err := h.linkUseCase.Execute(c.Request.Context(), cmd); err != nil {
		h.respondFlowError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "identity linked", gin.H{
		"provider": identity.Provider,
	})
}

// Unlink detaches the authenticated account's external identity.
func (h *AuthHandler) Unlink(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	cmd := usecases.UnlinkExternalIdentityCommand{
		AccountID:     acct.ID(),
		CorrelationID: c.GetString(constants.ContextKeyCorrelationID),
	}

	if err := h.unlinkUseCase.Execute(c.Request.Context(), cmd); err != nil {
		h.respondFlowError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "identity unlinked", nil)
}

// SetPassword gives an externally-authenticated account a local password.
func (h *AuthHandler) SetPassword(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.SetLocalSecretCommand{
		AccountID: acct.ID(),
		Password:  req.Password,
	}

	if err := h.setSecretUseCase.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "password set", nil)
}

// GetCurrentAccount returns the authenticated account's profile.
func (h *AuthHandler) GetCurrentAccount(c *gin.Context) {
	acct, ok := h.currentAccount(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "success", snapshotOf(acct))
}

func (h *AuthHandler) currentAccount(c *gin.Context) (*account.Account, bool) {
	sid := c.GetString(constants.ContextKeyAccountSID)
	if sid == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}

	acct, err := h.accounts.GetBySID(c.Request.Context(), sid)
	if err != nil || acct == nil {
		h.logger.Errorw("failed to resolve authenticated account", "error", err, "account_sid", sid)
		utils.ErrorResponse(c, http.StatusUnauthorized, "account not found")
		return nil, false
	}

	return acct, true
}

func (h *AuthHandler) redirectWithError(c *gin.Context, kind errors.FlowErrorKind) {
	redirect, err := url.Parse(h.frontendCallback)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "misconfigured callback URL")
		return
	}
	q := redirect.Query()
	q.Set("error", string(kind))
	redirect.RawQuery = q.Encode()

	c.Redirect(http.StatusFound, redirect.String())
}

// respondFlowError maps a flow error to a JSON status for the link/unlink
// endpoints; non-flow errors fall through to the shared mapping.
func (h *AuthHandler) respondFlowError(c *gin.Context, err error) {
	switch errors.FlowKindOf(err) {
	case errors.FlowErrAlreadyLinked, errors.FlowErrUnlinkOnlyAuthMethod:
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.FlowErrNoLinkedAccount:
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		utils.ErrorResponseWithError(c, err)
	}
}

func snapshotOf(acct *account.Account) flow.AccountSnapshot {
	return flow.AccountSnapshot{
		SID:        acct.SID(),
		Email:      acct.Email(),
		Name:       acct.Name(),
		AvatarURL:  acct.AvatarURL(),
		Role:       acct.Role(),
		Verified:   acct.Verified(),
		AuthMethod: acct.AuthMethod().String(),
	}
}

// generatePickupToken returns 256 bits of randomness in a URL-safe
// encoding, same shape as the state token.
func generatePickupToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
