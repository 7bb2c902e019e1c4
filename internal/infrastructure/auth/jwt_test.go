package auth

import (
	"strings"
	"testing"

	"github.com/servana-inc/servana/internal/shared/authorization"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	pair, err := service.IssueTokens("acct_abc123", authorization.RoleClient)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("IssueTokens() returned empty token")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must differ")
	}
	if pair.ExpiresIn != 15*60 {
		t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, 15*60)
	}

	claims, err := service.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims.AccountSID != "acct_abc123" {
		t.Errorf("AccountSID = %q, want %q", claims.AccountSID, "acct_abc123")
	}
	if claims.Role != authorization.RoleClient {
		t.Errorf("Role = %q, want %q", claims.Role, authorization.RoleClient)
	}

	sid, role, err := service.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
	if sid != "acct_abc123" || role != authorization.RoleClient {
		t.Errorf("VerifyRefresh() = (%q, %q), want (%q, %q)", sid, role, "acct_abc123", authorization.RoleClient)
	}
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	pair, err := service.IssueTokens("acct_abc123", authorization.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}

	if _, err := service.VerifyAccess(pair.RefreshToken); err == nil {
		t.Error("VerifyAccess() accepted a refresh token")
	}
	if _, _, err := service.VerifyRefresh(pair.AccessToken); err == nil {
		t.Error("VerifyRefresh() accepted an access token")
	}
}

func TestJWTService_RejectsInvalidTokens(t *testing.T) {
	service := NewJWTService("test-secret", 15, 7)

	pair, err := service.IssueTokens("acct_abc123", authorization.RoleClient)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}

	// Flip a character inside the signature segment.
	parts := strings.Split(pair.AccessToken, ".")
	sig := parts[2]
	if sig[0] == 'A' {
		parts[2] = "B" + sig[1:]
	} else {
		parts[2] = "A" + sig[1:]
	}
	tampered := strings.Join(parts, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not-a-jwt"},
		{"tampered signature", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Verify(tt.token); err == nil {
				t.Errorf("Verify() expected error for token %q", tt.token)
			}
		})
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 15, 7)
	verifier := NewJWTService("secret-b", 15, 7)

	pair, err := issuer.IssueTokens("acct_abc123", authorization.RoleClient)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}

	if _, err := verifier.Verify(pair.AccessToken); err == nil {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}
