package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/conference-planner/internal/persistence"
	"github.com/example/conference-planner/internal/testfixtures"
)

func seedAuthUser(t *testing.T, harness *testfixtures.SQLiteHarness) persistence.User {
	t.Helper()
	user := testfixtures.NewUserFixture()
	if err := harness.Users.CreateUser(context.Background(), user, "hash"); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return user
}

func TestAuthSessionRepository_RoundTrip(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	user := seedAuthUser(t, harness)

	now := testfixtures.ReferenceTime()
	session := persistence.AuthSession{
		ID:        "auth-1",
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	stored, err := harness.AuthSessions.CreateAuthSession(ctx, session)
	if err != nil {
		t.Fatalf("CreateAuthSession returned error: %v", err)
	}
	if stored.Token != "token-1" {
		t.Fatalf("unexpected session %+v", stored)
	}

	loaded, err := harness.AuthSessions.GetAuthSession(ctx, "token-1")
	if err != nil {
		t.Fatalf("GetAuthSession returned error: %v", err)
	}
	if loaded.UserID != user.ID || !loaded.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("session did not round-trip: %+v", loaded)
	}
	if loaded.RevokedAt != nil {
		t.Fatalf("a fresh session must not be revoked")
	}
}

func TestAuthSessionRepository_Revoke(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	user := seedAuthUser(t, harness)

	now := testfixtures.ReferenceTime()
	if _, err := harness.AuthSessions.CreateAuthSession(ctx, persistence.AuthSession{
		ID: "auth-1", UserID: user.ID, Token: "token-1", ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("CreateAuthSession returned error: %v", err)
	}

	revoked, err := harness.AuthSessions.RevokeAuthSession(ctx, "token-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("RevokeAuthSession returned error: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected the revocation time to be set, got %+v", revoked)
	}

	// Revoking twice, or revoking an unknown token, reports not found.
	if _, err := harness.AuthSessions.RevokeAuthSession(ctx, "token-1", now.Add(2*time.Minute)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a second revoke, got %v", err)
	}
	if _, err := harness.AuthSessions.RevokeAuthSession(ctx, "token-missing", now); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown token, got %v", err)
	}
}

func TestAuthSessionRepository_DeleteExpired(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	user := seedAuthUser(t, harness)

	now := testfixtures.ReferenceTime()
	sessions := []persistence.AuthSession{
		{ID: "auth-old", UserID: user.ID, Token: "token-old", ExpiresAt: now.Add(-time.Hour)},
		{ID: "auth-live", UserID: user.ID, Token: "token-live", ExpiresAt: now.Add(time.Hour)},
	}
	for _, session := range sessions {
		if _, err := harness.AuthSessions.CreateAuthSession(ctx, session); err != nil {
			t.Fatalf("CreateAuthSession returned error: %v", err)
		}
	}

	if err := harness.AuthSessions.DeleteExpiredAuthSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredAuthSessions returned error: %v", err)
	}

	if _, err := harness.AuthSessions.GetAuthSession(ctx, "token-old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected the expired session to be removed, got %v", err)
	}
	if _, err := harness.AuthSessions.GetAuthSession(ctx, "token-live"); err != nil {
		t.Fatalf("the live session must survive pruning, got %v", err)
	}
}

func TestAuthSessionRepository_CreateRequiresIdentity(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)

	_, err := harness.AuthSessions.CreateAuthSession(context.Background(), persistence.AuthSession{})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}
