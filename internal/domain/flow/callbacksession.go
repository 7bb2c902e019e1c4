package flow

import (
	"time"

	"github.com/servana-inc/servana/internal/shared/authorization"
)

// AccountSnapshot is the reconciled account as seen at callback time,
// carried inside a CallbackSession so the pickup endpoint needs no
// repository round-trip.
type AccountSnapshot struct {
	SID        string             `json:"sid"`
	Email      string             `json:"email"`
	Name       string             `json:"name"`
	AvatarURL  string             `json:"avatar_url,omitempty"`
	Role       authorization.Role `json:"role"`
	Verified   bool               `json:"verified"`
	AuthMethod string             `json:"auth_method"`
}

// CallbackSession represents a completed external login pending client
// pickup. The issued tokens are handed off via a lightweight redirect
// rather than in the callback response body. One-time use, short TTL
// (minutes, shorter than the state TTL).
type CallbackSession struct {
	Account      AccountSnapshot `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	IsNewUser    bool            `json:"is_new_user"`
	ReturnTo     string          `json:"return_to,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
