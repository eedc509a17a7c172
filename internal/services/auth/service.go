package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/praytyushpande/crewlyx/internal/domain/enums"
	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
)

const (
	MinRefreshTTL = 7 * 24 * time.Hour
	MaxRefreshTTL = 90 * 24 * time.Hour

	minNameLength     = 2
	maxNameLength     = 50
	minPasswordLength = 6
	minAge            = 16
	maxAge            = 100
)

type UserStore interface {
	Create(ctx context.Context, params pgrepo.CreateUserParams) (pgrepo.UserRecord, error)
	GetByEmail(ctx context.Context, email string) (pgrepo.UserRecord, error)
	TouchLastActive(ctx context.Context, userID int64) error
}

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, refreshToken string) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (SessionRecord, error)
	RotateRefresh(ctx context.Context, sid, oldRefreshToken, newRefreshToken string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID int64) error
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Age        int
	LookingFor string
}

type Service struct {
	jwt        *JWTManager
	users      UserStore
	sessions   SessionStore
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, users UserStore, sessions SessionStore, refreshTTL time.Duration) *Service {
	if refreshTTL < MinRefreshTTL {
		refreshTTL = MinRefreshTTL
	}
	if refreshTTL > MaxRefreshTTL {
		refreshTTL = MaxRefreshTTL
	}

	return &Service{
		jwt:        jwtManager,
		users:      users,
		sessions:   sessions,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	normalized, err := normalizeRegisterInput(in)
	if err != nil {
		return AuthResult{}, err
	}

	passwordHash, err := HashPassword(normalized.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.Create(ctx, pgrepo.CreateUserParams{
		Name:         normalized.Name,
		Email:        normalized.Email,
		PasswordHash: passwordHash,
		Age:          normalized.Age,
		LookingFor:   normalized.LookingFor,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueForUser(ctx, user)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	}
	if !user.IsActive {
		return AuthResult{}, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastActive(ctx, user.ID); err != nil {
		return AuthResult{}, fmt.Errorf("touch last active: %w", err)
	}

	return s.issueForUser(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return AuthResult{}, ErrInvalidInput
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("get refresh token session: %w", err)
	}
	if s.now().After(session.ExpiresAt) {
		return AuthResult{}, ErrUnauthorized
	}

	newRefreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	newExpiresAt := s.now().Add(s.refreshTTL)
	if err := s.sessions.RotateRefresh(ctx, session.SID, refreshToken, newRefreshToken, newExpiresAt); err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			return AuthResult{}, ErrUnauthorized
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(session.UserID, session.SID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  newRefreshToken,
		AccessExpires: accessExpires,
		User:          pgrepo.UserRecord{ID: session.UserID},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) issueForUser(ctx context.Context, user pgrepo.UserRecord) (AuthResult, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate session id: %w", err)
	}
	refreshToken, err := NewRefreshToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionExpiresAt := s.now().Add(s.refreshTTL)
	session := SessionRecord{
		SID:       sessionID,
		UserID:    user.ID,
		ExpiresAt: sessionExpiresAt,
	}
	if err := s.sessions.Create(ctx, session, refreshToken); err != nil {
		return AuthResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(user.ID, sessionID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		AccessExpires: accessExpires,
		User:          user,
	}, nil
}

func normalizeRegisterInput(in RegisterInput) (RegisterInput, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		return RegisterInput{}, fmt.Errorf("name must be between %d and %d characters: %w", minNameLength, maxNameLength, ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return RegisterInput{}, fmt.Errorf("invalid email: %w", ErrInvalidInput)
	}

	if len(in.Password) < minPasswordLength {
		return RegisterInput{}, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, ErrInvalidInput)
	}

	if in.Age < minAge || in.Age > maxAge {
		return RegisterInput{}, fmt.Errorf("age must be between %d and %d: %w", minAge, maxAge, ErrInvalidInput)
	}

	lookingFor := strings.TrimSpace(in.LookingFor)
	if lookingFor == "" {
		lookingFor = string(enums.LookingForAny)
	}
	if !enums.IsValidLookingFor(lookingFor) {
		return RegisterInput{}, fmt.Errorf("invalid lookingFor value: %w", ErrInvalidInput)
	}

	return RegisterInput{
		Name:       name,
		Email:      email,
		Password:   in.Password,
		Age:        in.Age,
		LookingFor: lookingFor,
	}, nil
}
