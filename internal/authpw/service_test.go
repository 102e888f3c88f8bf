package authpw

import (
	"context"
	"database/sql"
	"testing"

	"hitched/api/internal/store"
)

type fakeUserStore struct {
	users map[string]store.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]store.User)}
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	user, ok := f.users[email]
	if !ok {
		return store.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeUserStore) CreateUser(_ context.Context, user store.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) UpdateUserPassword(_ context.Context, userID, passwordHash string) error {
	for email, user := range f.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			f.users[email] = user
		}
	}
	return nil
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	user, err := svc.SignUp(ctx, SignUpRequest{Email: "Sarah@Example.com", Password: "correct-horse", Name: "Sarah"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.Email != "sarah@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatal("password must not be stored in the clear")
	}

	signedIn, err := svc.SignIn(ctx, "sarah@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, signedIn.ID)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "tom@example.com", Password: "correct-horse", Name: "Tom"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "tom@example.com", Password: "other-password", Name: "Tom Again"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "tom@example.com", Password: "correct-horse", Name: "Tom"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.SignIn(ctx, "tom@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "correct-horse"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := NewService(newFakeUserStore())
	ctx := context.Background()

	tests := []struct {
		name string
		req  SignUpRequest
	}{
		{name: "missing email", req: SignUpRequest{Password: "correct-horse", Name: "Tom"}},
		{name: "missing name", req: SignUpRequest{Email: "tom@example.com", Password: "correct-horse"}},
		{name: "short password", req: SignUpRequest{Email: "tom@example.com", Password: "short", Name: "Tom"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SignUp(ctx, tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
