package httpapi

import (
	"context"
	"testing"
	"time"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store/memory"
)

func TestLoginAndParseTokenRoundtrip(t *testing.T) {
	repo := memory.NewSeeded()
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	resp, err := auth.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != "admin" {
		t.Fatalf("expected admin role, got %q", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, nil)

	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatalf("expected parse to fail for garbage token")
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	repo := memory.NewSeeded()
	issuer := NewAuthManager("secret-a-secret-a-secret-a-secret", time.Hour, repo)
	verifier := NewAuthManager("secret-b-secret-b-secret-b-secret", time.Hour, repo)

	resp, err := issuer.Login(domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := memory.New()
	err := repo.CreateUser(context.Background(), domain.UserAccount{
		Username:  "bekas",
		Password:  "plainpass",
		Role:      "staff",
		Active:    false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	auth := NewAuthManager("test-secret-key", time.Hour, repo)
	if _, err := auth.Login(domain.LoginRequest{Username: "bekas", Password: "plainpass"}); err == nil {
		t.Fatalf("expected login to fail for inactive account")
	}
}

func TestBootstrapUpgradesPlainTextPasswords(t *testing.T) {
	repo := memory.New()
	err := repo.CreateUser(context.Background(), domain.UserAccount{
		Username:  "lama",
		Password:  "plaintext1",
		Role:      "staff",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	auth := NewAuthManager("test-secret-key", time.Hour, repo)
	if _, err := auth.Login(domain.LoginRequest{Username: "lama", Password: "plaintext1"}); err != nil {
		t.Fatalf("expected upgraded credential to log in: %v", err)
	}

	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 || !isPasswordHash(users[0].Password) {
		t.Fatalf("expected stored password upgraded to bcrypt hash, got %+v", users)
	}
}

func TestCreateStaffValidation(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, memory.New())

	if _, err := auth.CreateStaff(domain.StaffCreateRequest{Username: "ab", Password: "rahasia123"}); err == nil {
		t.Fatalf("expected short username to be rejected")
	}
	if _, err := auth.CreateStaff(domain.StaffCreateRequest{Username: "kasirbaru", Password: "123"}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}

	if _, err := auth.CreateStaff(domain.StaffCreateRequest{Username: "kasirbaru", Password: "rahasia123"}); err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if _, err := auth.CreateStaff(domain.StaffCreateRequest{Username: "kasirbaru", Password: "lainlagi123"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}

	staff := auth.ListStaff()
	if len(staff) != 1 || staff[0].Username != "kasirbaru" {
		t.Fatalf("unexpected staff list: %+v", staff)
	}
}
