package usecases_test

import (
	"context"
	"testing"

	"github.com/servana-inc/servana/internal/application/auth/testutil"
	"github.com/servana-inc/servana/internal/application/auth/usecases"
	"github.com/servana-inc/servana/internal/domain/flow"
)

func TestConsumeCallbackSession_OneTimeUse(t *testing.T) {
	store := testutil.NewMockCallbackSessionStore()
	err := store.Put(context.Background(), "pickup-1", flow.CallbackSession{
		AccessToken: "access-1",
		IsNewUser:   true,
		ReturnTo:    "/dashboard",
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	uc := usecases.NewConsumeCallbackSessionUseCase(store, testutil.NewMockLogger())

	session, err := uc.Execute(context.Background(), usecases.ConsumeCallbackSessionCommand{PickupToken: "pickup-1"})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if session.AccessToken != "access-1" {
		t.Errorf("AccessToken = %q, want access-1", session.AccessToken)
	}
	if !session.IsNewUser {
		t.Error("IsNewUser = false, want true")
	}

	if _, err := uc.Execute(context.Background(), usecases.ConsumeCallbackSessionCommand{PickupToken: "pickup-1"}); err == nil {
		t.Error("replayed pickup token accepted")
	}
}

func TestConsumeCallbackSession_UnknownToken(t *testing.T) {
	uc := usecases.NewConsumeCallbackSessionUseCase(testutil.NewMockCallbackSessionStore(), testutil.NewMockLogger())

	if _, err := uc.Execute(context.Background(), usecases.ConsumeCallbackSessionCommand{PickupToken: "never-issued"}); err == nil {
		t.Error("unknown pickup token accepted")
	}
	if _, err := uc.Execute(context.Background(), usecases.ConsumeCallbackSessionCommand{}); err == nil {
		t.Error("empty pickup token accepted")
	}
}
