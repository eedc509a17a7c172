package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/praytyushpande/crewlyx/internal/domain/enums"
	"github.com/praytyushpande/crewlyx/internal/domain/model"
	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	maxBioLength      = 500
	maxLocationLength = 100
	minAge            = 16
	maxAge            = 100

	maxDiscoverLimit     = 50
	defaultDiscoverLimit = 20
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	UpdateProfile(ctx context.Context, userID int64, params pgrepo.UpdateProfileParams) (pgrepo.UserRecord, error)
	Discover(ctx context.Context, userID int64, filter pgrepo.DiscoverFilter, limit int) ([]pgrepo.UserRecord, error)
	IncrementProfileViews(ctx context.Context, userID int64) error
	TouchLastActive(ctx context.Context, userID int64) error
	Deactivate(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type UpdateInput struct {
	Name         *string
	Age          *int
	Bio          *string
	Location     *string
	Experience   *string
	Skills       []string
	Interests    []string
	LookingFor   *string
	Availability *string
}

type DiscoverInput struct {
	LookingFor string
	Location   string
	Skills     []string
	Limit      int
}

type Service struct {
	store UserStore
	now   func() time.Time
}

func NewService(store UserStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Profile(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}

	record, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return AsUser(record), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, in UpdateInput) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}

	params, err := validateUpdate(in)
	if err != nil {
		return model.User{}, err
	}

	record, err := s.store.UpdateProfile(ctx, userID, params)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}

	return AsUser(record), nil
}

// Discover lists active users the caller has not swiped yet, most recently
// active first. It also refreshes the caller's own activity timestamp.
func (s *Service) Discover(ctx context.Context, userID int64, in DiscoverInput) ([]model.PublicProfile, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	if in.LookingFor != "" && !enums.IsValidLookingFor(in.LookingFor) {
		return nil, fmt.Errorf("invalid lookingFor filter: %w", ErrValidation)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}
	if limit > maxDiscoverLimit {
		limit = maxDiscoverLimit
	}

	filter := pgrepo.DiscoverFilter{
		LookingFor: strings.TrimSpace(in.LookingFor),
		Location:   strings.TrimSpace(in.Location),
		Skills:     cleanStrings(in.Skills),
	}

	records, err := s.store.Discover(ctx, userID, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("discover users: %w", err)
	}

	if err := s.store.TouchLastActive(ctx, userID); err != nil {
		return nil, fmt.Errorf("touch last active: %w", err)
	}

	profiles := make([]model.PublicProfile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, AsUser(record).Public())
	}
	return profiles, nil
}

// PublicProfile returns another user's profile and counts the view unless
// the caller is looking at themselves.
func (s *Service) PublicProfile(ctx context.Context, viewerID, targetID int64) (model.PublicProfile, error) {
	if targetID <= 0 {
		return model.PublicProfile{}, ErrValidation
	}

	record, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.PublicProfile{}, ErrNotFound
		}
		return model.PublicProfile{}, fmt.Errorf("get user: %w", err)
	}
	if !record.IsActive {
		return model.PublicProfile{}, ErrNotFound
	}

	if viewerID > 0 && viewerID != targetID {
		if err := s.store.IncrementProfileViews(ctx, targetID); err != nil {
			return model.PublicProfile{}, fmt.Errorf("increment profile views: %w", err)
		}
		record.ProfileViews++
	}

	return AsUser(record).Public(), nil
}

func (s *Service) Deactivate(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}

	if _, err := s.store.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

// AsUser maps a storage record onto the API-facing user shape.
func AsUser(record pgrepo.UserRecord) model.User {
	return model.User{
		ID:           record.ID,
		Name:         record.Name,
		Email:        record.Email,
		Age:          record.Age,
		Bio:          record.Bio,
		Location:     record.Location,
		Experience:   record.Experience,
		Skills:       record.Skills,
		Interests:    record.Interests,
		LookingFor:   enums.LookingFor(record.LookingFor),
		Availability: enums.Availability(record.Availability),
		ProfilePhoto: record.ProfilePhoto,
		IsActive:     record.IsActive,
		LastActive:   record.LastActive,
		ProfileViews: record.ProfileViews,
		TotalLikes:   record.TotalLikes,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func validateUpdate(in UpdateInput) (pgrepo.UpdateProfileParams, error) {
	params := pgrepo.UpdateProfileParams{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < minNameLength || len(name) > maxNameLength {
			return params, fmt.Errorf("name must be between %d and %d characters: %w", minNameLength, maxNameLength, ErrValidation)
		}
		params.Name = &name
	}
	if in.Age != nil {
		if *in.Age < minAge || *in.Age > maxAge {
			return params, fmt.Errorf("age must be between %d and %d: %w", minAge, maxAge, ErrValidation)
		}
		params.Age = in.Age
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len(bio) > maxBioLength {
			return params, fmt.Errorf("bio must be at most %d characters: %w", maxBioLength, ErrValidation)
		}
		params.Bio = &bio
	}
	if in.Location != nil {
		location := strings.TrimSpace(*in.Location)
		if len(location) > maxLocationLength {
			return params, fmt.Errorf("location must be at most %d characters: %w", maxLocationLength, ErrValidation)
		}
		params.Location = &location
	}
	if in.Experience != nil {
		experience := strings.TrimSpace(*in.Experience)
		params.Experience = &experience
	}
	if in.Skills != nil {
		params.Skills = cleanStrings(in.Skills)
	}
	if in.Interests != nil {
		params.Interests = cleanStrings(in.Interests)
	}
	if in.LookingFor != nil {
		lookingFor := strings.TrimSpace(*in.LookingFor)
		if !enums.IsValidLookingFor(lookingFor) {
			return params, fmt.Errorf("invalid lookingFor value: %w", ErrValidation)
		}
		params.LookingFor = &lookingFor
	}
	if in.Availability != nil {
		availability := strings.TrimSpace(*in.Availability)
		if !enums.IsValidAvailability(availability) {
			return params, fmt.Errorf("invalid availability value: %w", ErrValidation)
		}
		params.Availability = &availability
	}

	return params, nil
}

func cleanStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return cleaned
}
