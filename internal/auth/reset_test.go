package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/blogosphere/blogd/internal/domain"
)

func TestReset_IssueRequiresVerified(t *testing.T) {
	backend := newFakeBackend()
	svc := NewPasswordResetService(testTokenStore(t, backend), backend)
	user := backend.addUser(false)

	if _, err := svc.IssueReset(context.Background(), user); !errors.Is(err, domain.ErrNotVerified) {
		t.Fatalf("IssueReset = %v, want ErrNotVerified", err)
	}
	if n := backend.tokenCount(); n != 0 {
		t.Errorf("token rows = %d, want 0 when issuance is refused", n)
	}
}

func TestReset_ConfirmUpdatesPassword(t *testing.T) {
	backend := newFakeBackend()
	svc := NewPasswordResetService(testTokenStore(t, backend), backend)
	ctx := context.Background()
	user := backend.addUser(true)

	raw, err := svc.IssueReset(ctx, user)
	if err != nil {
		t.Fatalf("IssueReset failed: %v", err)
	}

	got, err := svc.ConfirmReset(ctx, raw, "brand-new-password", true)
	if err != nil {
		t.Fatalf("ConfirmReset failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("owner = %v, want %v", got.ID, user.ID)
	}

	stored, _ := backend.GetByID(ctx, user.ID)
	if !VerifyPassword("brand-new-password", stored.PasswordHash) {
		t.Error("stored hash does not verify the new password")
	}

	if _, err := svc.ConfirmReset(ctx, raw, "another-password", true); !errors.Is(err, domain.ErrTokenInactive) {
		t.Errorf("second ConfirmReset = %v, want ErrTokenInactive", err)
	}
}

func TestReset_InvalidNewPasswordLeavesTokenLive(t *testing.T) {
	// A rejected password must not burn the user's only reset link.
	backend := newFakeBackend()
	svc := NewPasswordResetService(testTokenStore(t, backend), backend)
	ctx := context.Background()
	user := backend.addUser(true)

	raw, err := svc.IssueReset(ctx, user)
	if err != nil {
		t.Fatalf("IssueReset failed: %v", err)
	}

	var verr *ValidationError
	if _, err := svc.ConfirmReset(ctx, raw, "short", true); !errors.As(err, &verr) {
		t.Fatalf("ConfirmReset with short password = %v, want ValidationError", err)
	}

	got, err := svc.ConfirmReset(ctx, raw, "acceptable-password", true)
	if err != nil {
		t.Fatalf("retry with a valid password = %v, want success", err)
	}
	stored, _ := backend.GetByID(ctx, got.ID)
	if !VerifyPassword("acceptable-password", stored.PasswordHash) {
		t.Error("stored hash should match the retried password")
	}
}

func TestReset_PeekDoesNotBurn(t *testing.T) {
	backend := newFakeBackend()
	svc := NewPasswordResetService(testTokenStore(t, backend), backend)
	ctx := context.Background()
	user := backend.addUser(true)

	raw, err := svc.IssueReset(ctx, user)
	if err != nil {
		t.Fatalf("IssueReset failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := svc.Peek(ctx, raw)
		if err != nil {
			t.Fatalf("Peek %d failed: %v", i, err)
		}
		if got.ID != user.ID {
			t.Errorf("Peek owner = %v, want %v", got.ID, user.ID)
		}
	}

	if _, err := svc.ConfirmReset(ctx, raw, "new-password-after-peek", true); err != nil {
		t.Fatalf("ConfirmReset after peeks failed: %v", err)
	}
}

func TestReset_ConfirmWithoutConsumeLeavesTokenLive(t *testing.T) {
	// The legacy two-step flow sets the password on the peek leg and burns
	// the token only on the final leg.
	backend := newFakeBackend()
	svc := NewPasswordResetService(testTokenStore(t, backend), backend)
	ctx := context.Background()
	user := backend.addUser(true)

	raw, err := svc.IssueReset(ctx, user)
	if err != nil {
		t.Fatalf("IssueReset failed: %v", err)
	}

	if _, err := svc.ConfirmReset(ctx, raw, "interim-password", false); err != nil {
		t.Fatalf("non-consuming ConfirmReset failed: %v", err)
	}
	if _, err := svc.ConfirmReset(ctx, raw, "final-password", true); err != nil {
		t.Fatalf("consuming ConfirmReset failed: %v", err)
	}

	stored, _ := backend.GetByID(ctx, user.ID)
	if !VerifyPassword("final-password", stored.PasswordHash) {
		t.Error("stored hash should match the last password set")
	}
}

func TestReset_VerificationTokenRejected(t *testing.T) {
	backend := newFakeBackend()
	store := testTokenStore(t, backend)
	verify := NewVerificationService(store, backend)
	reset := NewPasswordResetService(store, backend)
	ctx := context.Background()
	user := backend.addUser(false)

	raw, err := verify.IssueVerification(ctx, user)
	if err != nil {
		t.Fatalf("IssueVerification failed: %v", err)
	}
	if _, err := reset.Peek(ctx, raw); !errors.Is(err, domain.ErrWrongPurpose) {
		t.Errorf("Peek with verification token = %v, want ErrWrongPurpose", err)
	}
	if _, err := reset.ConfirmReset(ctx, raw, "new-password", true); !errors.Is(err, domain.ErrWrongPurpose) {
		t.Errorf("ConfirmReset with verification token = %v, want ErrWrongPurpose", err)
	}
}
