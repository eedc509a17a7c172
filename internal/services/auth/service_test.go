package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	redrepo "github.com/praytyushpande/crewlyx/internal/repo/redis"
	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
)

type stubUserStore struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]pgrepo.UserRecord
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byMail: make(map[string]pgrepo.UserRecord)}
}

func (s *stubUserStore) Create(_ context.Context, params pgrepo.CreateUserParams) (pgrepo.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byMail[params.Email]; ok {
		return pgrepo.UserRecord{}, pgrepo.ErrEmailTaken
	}

	s.nextID++
	record := pgrepo.UserRecord{
		ID:           s.nextID,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Age:          params.Age,
		LookingFor:   params.LookingFor,
		IsActive:     true,
	}
	s.byMail[params.Email] = record
	return record, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (pgrepo.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byMail[email]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func (s *stubUserStore) TouchLastActive(_ context.Context, _ int64) error {
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	registerRes, err := svc.Register(ctx, authsvc.RegisterInput{
		Name:     "Priya",
		Email:    "priya@example.com",
		Password: "hunter22",
		Age:      24,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registerRes.AccessToken == "" || registerRes.RefreshToken == "" {
		t.Fatalf("register did not issue tokens")
	}
	if registerRes.User.LookingFor != "any" {
		t.Fatalf("expected lookingFor to default to any, got %q", registerRes.User.LookingFor)
	}

	loginRes, err := svc.Login(ctx, "PRIYA@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginRes.User.ID != registerRes.User.ID {
		t.Fatalf("login returned user %d, registered %d", loginRes.User.ID, registerRes.User.ID)
	}

	if _, err := svc.Login(ctx, "priya@example.com", "wrong-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password should fail with invalid credentials, got err=%v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	cases := []authsvc.RegisterInput{
		{Name: "P", Email: "p@example.com", Password: "hunter22", Age: 24},
		{Name: "Priya", Email: "not-an-email", Password: "hunter22", Age: 24},
		{Name: "Priya", Email: "p@example.com", Password: "short", Age: 24},
		{Name: "Priya", Email: "p@example.com", Password: "hunter22", Age: 15},
		{Name: "Priya", Email: "p@example.com", Password: "hunter22", Age: 101},
		{Name: "Priya", Email: "p@example.com", Password: "hunter22", Age: 24, LookingFor: "soulmate"},
	}
	for i, in := range cases {
		if _, err := svc.Register(ctx, in); !errors.Is(err, authsvc.ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got err=%v", i, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	in := authsvc.RegisterInput{Name: "Priya", Email: "priya@example.com", Password: "hunter22", Age: 24}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("second register should fail with email taken, got err=%v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	registerRes, err := svc.Register(ctx, authsvc.RegisterInput{
		Name:     "Arjun",
		Email:    "arjun@example.com",
		Password: "hunter22",
		Age:      28,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, registerRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == registerRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, registerRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	registerRes, err := svc.Register(ctx, authsvc.RegisterInput{
		Name:     "Neha",
		Email:    "neha@example.com",
		Password: "hunter22",
		Age:      30,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, registerRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, registerRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestLogoutAllInvalidatesEverySession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	registerRes, err := svc.Register(ctx, authsvc.RegisterInput{
		Name:     "Dev",
		Email:    "dev@example.com",
		Password: "hunter22",
		Age:      26,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	loginRes, err := svc.Login(ctx, "dev@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.LogoutAll(ctx, registerRes.User.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}

	for _, token := range []string{registerRes.AccessToken, loginRes.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, authsvc.ErrUnauthorized) {
			t.Fatalf("token should be unauthorized after logout all, got err=%v", err)
		}
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, newStubUserStore(), sessions, 45*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}
