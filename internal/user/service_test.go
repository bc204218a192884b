package user_test

import (
	"context"
	"errors"
	"testing"

	"taskspace/internal/apperr"
	"taskspace/internal/auth"
	"taskspace/internal/user"
	"taskspace/tests/testutil"
)

func TestRegisterUpsert(t *testing.T) {
	svc := user.NewService(testutil.NewTestStore(t))
	ctx := context.Background()

	u, created, err := svc.Register(ctx, auth.Identity{
		UID:   "user-1",
		Email: "u@example.com",
		Name:  "First Name",
	})
	if err != nil {
		t.Fatalf("registering: %v", err)
	}
	if !created {
		t.Error("first register did not report created")
	}
	if u.ID != "user-1" || u.DisplayName != "First Name" || !u.Active {
		t.Errorf("user = %+v", u)
	}
	firstLogin := u.LastLoginAt

	// A repeat register refreshes the record in place. An empty name keeps
	// the stored one.
	u, created, err = svc.Register(ctx, auth.Identity{
		UID:   "user-1",
		Email: "new@example.com",
	})
	if err != nil {
		t.Fatalf("re-registering: %v", err)
	}
	if created {
		t.Error("second register reported created")
	}
	if u.Email != "new@example.com" {
		t.Errorf("email = %q, want refreshed", u.Email)
	}
	if u.DisplayName != "First Name" {
		t.Errorf("displayName = %q, want kept", u.DisplayName)
	}
	if u.LastLoginAt.Before(firstLogin) {
		t.Errorf("lastLoginAt went backwards: %v -> %v", firstLogin, u.LastLoginAt)
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc := user.NewService(testutil.NewTestStore(t))

	_, err := svc.Get(context.Background(), "ghost")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Fatalf("err = %v, want KindNotFound", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := user.NewService(testutil.NewTestStore(t))
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, auth.Identity{
		UID:     "user-1",
		Name:    "Original",
		Picture: "http://x/old.png",
	}); err != nil {
		t.Fatalf("registering: %v", err)
	}

	name := "Renamed"
	u, err := svc.UpdateProfile(ctx, "user-1", &name, nil)
	if err != nil {
		t.Fatalf("updating profile: %v", err)
	}
	if u.DisplayName != "Renamed" {
		t.Errorf("displayName = %q", u.DisplayName)
	}
	if u.AvatarURL != "http://x/old.png" {
		t.Errorf("avatarUrl = %q, want untouched", u.AvatarURL)
	}
}
