package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	redrepo "github.com/praytyushpande/crewlyx/internal/repo/redis"
	authsvc "github.com/praytyushpande/crewlyx/internal/services/auth"
)

type userStoreStub struct {
	mu     sync.Mutex
	nextID int64
	byMail map[string]pgrepo.UserRecord
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{byMail: make(map[string]pgrepo.UserRecord)}
}

func (s *userStoreStub) Create(_ context.Context, params pgrepo.CreateUserParams) (pgrepo.UserRecord, error) {
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

func (s *userStoreStub) GetByEmail(_ context.Context, email string) (pgrepo.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byMail[email]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func (s *userStoreStub) TouchLastActive(_ context.Context, _ int64) error {
	return nil
}

func newAuthHandlerForTest(t *testing.T) (*AuthHandler, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, newUserStoreStub(), redrepo.NewSessionRepo(client), 45*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}
	return NewAuthHandler(svc), cleanup
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegisterHandler(t *testing.T) {
	h, cleanup := newAuthHandlerForTest(t)
	defer cleanup()

	rr := postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"name":     "Priya",
		"email":    "priya@example.com",
		"password": "hunter22",
		"age":      24,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         *struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		t.Fatalf("tokens missing: %s", rr.Body.String())
	}
	if payload.User == nil || payload.User.Email != "priya@example.com" {
		t.Fatalf("user missing from response: %s", rr.Body.String())
	}

	rr = postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"name":     "Priya",
		"email":    "priya@example.com",
		"password": "hunter22",
		"age":      24,
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate email: got %d want %d", rr.Code, http.StatusConflict)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	h, cleanup := newAuthHandlerForTest(t)
	defer cleanup()

	rr := postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"name":     "P",
		"email":    "p@example.com",
		"password": "hunter22",
		"age":      24,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	h, cleanup := newAuthHandlerForTest(t)
	defer cleanup()

	rr := postJSON(t, h.Register, "/api/auth/register", map[string]any{
		"name":     "Priya",
		"email":    "priya@example.com",
		"password": "hunter22",
		"age":      24,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rr.Code)
	}

	rr = postJSON(t, h.Login, "/api/auth/login", map[string]any{
		"email":    "priya@example.com",
		"password": "wrong-pass",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogoutRequiresIdentity(t *testing.T) {
	h, cleanup := newAuthHandlerForTest(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}
