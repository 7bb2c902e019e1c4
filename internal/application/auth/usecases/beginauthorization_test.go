package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/servana-inc/servana/internal/application/auth/testutil"
	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/audit"
	"github.com/servana-inc/servana/internal/shared/authorization"
	sharederrors "github.com/servana-inc/servana/internal/shared/errors"
)

func TestBeginAuthorization_Success(t *testing.T) {
	client := testutil.NewMockIdentityProviderClient()
	stateStore := testutil.NewMockStateStore()
	auditSink := testutil.NewMockAuditSink()

	uc := usecases.NewBeginAuthorizationUseCase(client, stateStore, auditSink, testutil.NewMockLogger())

	result, err := uc.Execute(context.Background(), usecases.BeginAuthorizationCommand{
		RequestedRole: authorization.RoleProvider,
		ReturnTo:      "/bookings",
		CorrelationID: "corr-1",
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if result.State == "" {
		t.Fatal("Execute() returned empty state")
	}
	if !strings.Contains(result.AuthURL, result.State) {
		t.Errorf("AuthURL %q does not carry state %q", result.AuthURL, result.State)
	}
	if len(result.State) < 43 {
		t.Errorf("state length = %d, want at least 43 characters for 256 bits", len(result.State))
	}

	record, err := stateStore.Consume(context.Background(), result.State)
	if err != nil || record == nil {
		t.Fatalf("state record not stored: record=%v err=%v", record, err)
	}
	if record.RequestedRole != authorization.RoleProvider {
		t.Errorf("record.RequestedRole = %v, want %v", record.RequestedRole, authorization.RoleProvider)
	}
	if record.ReturnTo != "/bookings" {
		t.Errorf("record.ReturnTo = %q, want /bookings", record.ReturnTo)
	}

	events := auditSink.EventsOfType(audit.EventInitiate)
	if len(events) != 1 {
		t.Fatalf("initiate audit events = %d, want 1", len(events))
	}
	if events[0].CorrelationID != "corr-1" {
		t.Errorf("event correlation id = %q, want corr-1", events[0].CorrelationID)
	}
}

func TestBeginAuthorization_StatesAreUnique(t *testing.T) {
	client := testutil.NewMockIdentityProviderClient()
	stateStore := testutil.NewMockStateStore()

	uc := usecases.NewBeginAuthorizationUseCase(client, stateStore, testutil.NewMockAuditSink(), testutil.NewMockLogger())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		result, err := uc.Execute(context.Background(), usecases.BeginAuthorizationCommand{})
		if err != nil {
			t.Fatalf("Execute() unexpected error = %v", err)
		}
		if seen[result.State] {
			t.Fatalf("duplicate state token %q", result.State)
		}
		seen[result.State] = true
	}
	if stateStore.Len() != 50 {
		t.Errorf("stored states = %d, want 50", stateStore.Len())
	}
}

func TestBeginAuthorization_InvalidRoleFallsBackToDefault(t *testing.T) {
	client := testutil.NewMockIdentityProviderClient()
	stateStore := testutil.NewMockStateStore()

	uc := usecases.NewBeginAuthorizationUseCase(client, stateStore, testutil.NewMockAuditSink(), testutil.NewMockLogger())

	result, err := uc.Execute(context.Background(), usecases.BeginAuthorizationCommand{
		RequestedRole: authorization.Role("superuser"),
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}

	record, _ := stateStore.Consume(context.Background(), result.State)
	if record.RequestedRole != authorization.DefaultRole() {
		t.Errorf("record.RequestedRole = %v, want default %v", record.RequestedRole, authorization.DefaultRole())
	}
}

func TestBeginAuthorization_NotConfigured(t *testing.T) {
	client := testutil.NewMockIdentityProviderClient()
	client.IsConfigured = false

	uc := usecases.NewBeginAuthorizationUseCase(client, testutil.NewMockStateStore(), testutil.NewMockAuditSink(), testutil.NewMockLogger())

	_, err := uc.Execute(context.Background(), usecases.BeginAuthorizationCommand{})
	if sharederrors.FlowKindOf(err) != sharederrors.FlowErrConfiguration {
		t.Errorf("FlowKindOf(err) = %v, want %v", sharederrors.FlowKindOf(err), sharederrors.FlowErrConfiguration)
	}
}

func TestBeginAuthorization_StateStoreFailure(t *testing.T) {
	client := testutil.NewMockIdentityProviderClient()
	stateStore := testutil.NewMockStateStore()
	stateStore.SetPutError(errors.New("redis down"))

	uc := usecases.NewBeginAuthorizationUseCase(client, stateStore, testutil.NewMockAuditSink(), testutil.NewMockLogger())

	_, err := uc.Execute(context.Background(), usecases.BeginAuthorizationCommand{})
	if err == nil {
		t.Fatal("Execute() expected error when state store fails")
	}
	if sharederrors.FlowKindOf(err) != sharederrors.FlowErrUnknown {
		t.Errorf("FlowKindOf(err) = %v, want %v", sharederrors.FlowKindOf(err), sharederrors.FlowErrUnknown)
	}
}
