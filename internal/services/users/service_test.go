package users_test

import (
	"context"
	"errors"
	"testing"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	userssvc "github.com/praytyushpande/crewlyx/internal/services/users"
)

type stubUserStore struct {
	records      map[int64]pgrepo.UserRecord
	discovered   []pgrepo.UserRecord
	lastFilter   pgrepo.DiscoverFilter
	lastLimit    int
	viewsCounted []int64
	touched      []int64
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{records: make(map[int64]pgrepo.UserRecord)}
}

func (s *stubUserStore) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	record, ok := s.records[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func (s *stubUserStore) UpdateProfile(_ context.Context, userID int64, params pgrepo.UpdateProfileParams) (pgrepo.UserRecord, error) {
	record, ok := s.records[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	if params.Name != nil {
		record.Name = *params.Name
	}
	if params.Age != nil {
		record.Age = *params.Age
	}
	if params.Bio != nil {
		record.Bio = *params.Bio
	}
	if params.LookingFor != nil {
		record.LookingFor = *params.LookingFor
	}
	if params.Skills != nil {
		record.Skills = params.Skills
	}
	s.records[userID] = record
	return record, nil
}

func (s *stubUserStore) Discover(_ context.Context, _ int64, filter pgrepo.DiscoverFilter, limit int) ([]pgrepo.UserRecord, error) {
	s.lastFilter = filter
	s.lastLimit = limit
	return s.discovered, nil
}

func (s *stubUserStore) IncrementProfileViews(_ context.Context, userID int64) error {
	s.viewsCounted = append(s.viewsCounted, userID)
	return nil
}

func (s *stubUserStore) TouchLastActive(_ context.Context, userID int64) error {
	s.touched = append(s.touched, userID)
	return nil
}

func (s *stubUserStore) Deactivate(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	record, ok := s.records[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	record.IsActive = false
	s.records[userID] = record
	return record, nil
}

func TestUpdateProfileValidation(t *testing.T) {
	store := newStubUserStore()
	store.records[1] = pgrepo.UserRecord{ID: 1, Name: "Priya", IsActive: true}
	svc := userssvc.NewService(store)

	ctx := context.Background()

	longBio := make([]byte, 501)
	for i := range longBio {
		longBio[i] = 'a'
	}

	badName := "x"
	badAge := 15
	badBio := string(longBio)
	badLooking := "soulmate"

	cases := []userssvc.UpdateInput{
		{Name: &badName},
		{Age: &badAge},
		{Bio: &badBio},
		{LookingFor: &badLooking},
	}
	for i, in := range cases {
		if _, err := svc.UpdateProfile(ctx, 1, in); !errors.Is(err, userssvc.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got err=%v", i, err)
		}
	}

	goodName := "  Priya Sharma  "
	updated, err := svc.UpdateProfile(ctx, 1, userssvc.UpdateInput{
		Name:   &goodName,
		Skills: []string{" go ", "", "react"},
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Priya Sharma" {
		t.Fatalf("name not trimmed: %q", updated.Name)
	}
	if len(updated.Skills) != 2 || updated.Skills[0] != "go" || updated.Skills[1] != "react" {
		t.Fatalf("skills not cleaned: %v", updated.Skills)
	}
}

func TestDiscoverClampsLimitAndTouchesActivity(t *testing.T) {
	store := newStubUserStore()
	store.discovered = []pgrepo.UserRecord{{ID: 2, Name: "Arjun", IsActive: true}}
	svc := userssvc.NewService(store)

	profiles, err := svc.Discover(context.Background(), 1, userssvc.DiscoverInput{Limit: 500, LookingFor: "mentor"})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if store.lastLimit != 50 {
		t.Fatalf("limit not clamped, got %d", store.lastLimit)
	}
	if store.lastFilter.LookingFor != "mentor" {
		t.Fatalf("filter not forwarded: %+v", store.lastFilter)
	}
	if len(store.touched) != 1 || store.touched[0] != 1 {
		t.Fatalf("caller activity not touched: %v", store.touched)
	}
	if len(profiles) != 1 || profiles[0].ID != 2 {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}

	if _, err := svc.Discover(context.Background(), 1, userssvc.DiscoverInput{LookingFor: "soulmate"}); !errors.Is(err, userssvc.ErrValidation) {
		t.Fatalf("invalid filter should fail validation, got err=%v", err)
	}
}

func TestPublicProfileCountsViews(t *testing.T) {
	store := newStubUserStore()
	store.records[2] = pgrepo.UserRecord{ID: 2, Name: "Arjun", IsActive: true, ProfileViews: 4}
	svc := userssvc.NewService(store)

	ctx := context.Background()
	profile, err := svc.PublicProfile(ctx, 1, 2)
	if err != nil {
		t.Fatalf("public profile: %v", err)
	}
	if profile.ProfileViews != 5 {
		t.Fatalf("expected view count 5, got %d", profile.ProfileViews)
	}
	if len(store.viewsCounted) != 1 || store.viewsCounted[0] != 2 {
		t.Fatalf("profile view not recorded: %v", store.viewsCounted)
	}

	// Looking at your own profile does not count.
	if _, err := svc.PublicProfile(ctx, 2, 2); err != nil {
		t.Fatalf("self profile: %v", err)
	}
	if len(store.viewsCounted) != 1 {
		t.Fatalf("self view should not be recorded: %v", store.viewsCounted)
	}
}

func TestPublicProfileHidesInactiveUsers(t *testing.T) {
	store := newStubUserStore()
	store.records[2] = pgrepo.UserRecord{ID: 2, Name: "Arjun", IsActive: false}
	svc := userssvc.NewService(store)

	if _, err := svc.PublicProfile(context.Background(), 1, 2); !errors.Is(err, userssvc.ErrNotFound) {
		t.Fatalf("inactive user should be not found, got err=%v", err)
	}
}

func TestDeactivate(t *testing.T) {
	store := newStubUserStore()
	store.records[1] = pgrepo.UserRecord{ID: 1, IsActive: true}
	svc := userssvc.NewService(store)

	if err := svc.Deactivate(context.Background(), 1); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if store.records[1].IsActive {
		t.Fatalf("user still active after deactivate")
	}

	if err := svc.Deactivate(context.Background(), 99); !errors.Is(err, userssvc.ErrNotFound) {
		t.Fatalf("missing user should be not found, got err=%v", err)
	}
}
