package service_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/service"
)

func TestSessionCreate(t *testing.T) {
	repo := newMockSessionRepo()
	svc := service.NewSessionService(repo, 7*24*time.Hour)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(first.Token) != 32 {
		t.Fatalf("expected a 32-char hex token, got %q", first.Token)
	}
	if _, err := hex.DecodeString(first.Token); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if first.Status != domain.SessionActive {
		t.Fatalf("expected active session, got %s", first.Status)
	}
	if until := time.Until(first.ValidTill); until < 6*24*time.Hour {
		t.Fatalf("session expires too soon: %s", until)
	}

	second, err := svc.Create(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Token == first.Token {
		t.Fatal("tokens must not repeat")
	}
}

func TestSessionResolve(t *testing.T) {
	repo := newMockSessionRepo()
	svc := service.NewSessionService(repo, 7*24*time.Hour)
	ctx := context.Background()

	session, err := svc.Create(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}

	customerID, err := svc.Resolve(ctx, session.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if customerID != 42 {
		t.Fatalf("expected customer 42, got %d", customerID)
	}
}

func TestSessionResolveRejectsGarbage(t *testing.T) {
	svc := service.NewSessionService(newMockSessionRepo(), time.Hour)
	ctx := context.Background()

	for _, token := range []string{"", "short", "e3b0c44298fc1c149afbf4c8996fb924"} {
		if _, err := svc.Resolve(ctx, token); domain.CodeOf(err) != domain.CodeUnauthenticated {
			t.Fatalf("token %q: expected unauthenticated, got %v", token, err)
		}
	}
}

func TestSessionLazyExpiry(t *testing.T) {
	repo := newMockSessionRepo()
	svc := service.NewSessionService(repo, -time.Minute) // already expired on creation
	ctx := context.Background()

	session, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Resolve(ctx, session.Token); domain.CodeOf(err) != domain.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated for expired session, got %v", err)
	}

	// The resolver flipped the row, not just rejected the call.
	stored, err := repo.FindByToken(ctx, session.Token)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.SessionLoggedOut {
		t.Fatalf("expired session should be flipped to logged_out, got %s", stored.Status)
	}

	// And it stays rejected on the next call.
	if _, err := svc.Resolve(ctx, session.Token); domain.CodeOf(err) != domain.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated for logged-out session, got %v", err)
	}
}

func TestSessionLogout(t *testing.T) {
	repo := newMockSessionRepo()
	svc := service.NewSessionService(repo, time.Hour)
	ctx := context.Background()

	session, err := svc.Create(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Resolve(ctx, session.Token); domain.CodeOf(err) != domain.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %v", err)
	}
	// Logging out twice is rejected, not a crash.
	if err := svc.Logout(ctx, session.Token); domain.CodeOf(err) != domain.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated on second logout, got %v", err)
	}
}
