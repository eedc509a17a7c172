package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

type swipeStoreStub struct {
	nextID  int64
	created []pgrepo.SwipeRecord
	likes   map[[2]int64]bool
	history []pgrepo.SwipeHistoryRecord
	counts  pgrepo.SwipeCounts
}

func newSwipeStoreStub() *swipeStoreStub {
	return &swipeStoreStub{likes: make(map[[2]int64]bool)}
}

func (s *swipeStoreStub) Create(_ context.Context, _ pgx.Tx, actorID, targetID int64, action string, now time.Time) (pgrepo.SwipeRecord, error) {
	for _, existing := range s.created {
		if existing.ActorUserID == actorID && existing.TargetUserID == targetID {
			return pgrepo.SwipeRecord{}, pgrepo.ErrDuplicateSwipe
		}
	}
	s.nextID++
	record := pgrepo.SwipeRecord{
		ID:           s.nextID,
		ActorUserID:  actorID,
		TargetUserID: targetID,
		Action:       action,
		CreatedAt:    now,
	}
	s.created = append(s.created, record)
	if action == "like" {
		s.likes[[2]int64{actorID, targetID}] = true
	}
	return record, nil
}

func (s *swipeStoreStub) HasLike(_ context.Context, _ pgx.Tx, actorID, targetID int64) (bool, error) {
	return s.likes[[2]int64{actorID, targetID}], nil
}

func (s *swipeStoreStub) ListByActor(_ context.Context, _ int64, _ string, _, _ int) ([]pgrepo.SwipeHistoryRecord, error) {
	return s.history, nil
}

func (s *swipeStoreStub) CountByActor(_ context.Context, _ int64, _ string) (int, error) {
	return len(s.history), nil
}

func (s *swipeStoreStub) CountsByActor(_ context.Context, _ int64) (pgrepo.SwipeCounts, error) {
	return s.counts, nil
}

type userStoreStub struct {
	active     map[int64]bool
	records    map[int64]pgrepo.UserRecord
	likeCounts map[int64]int
}

func newUserStoreStub(ids ...int64) *userStoreStub {
	stub := &userStoreStub{
		active:     make(map[int64]bool),
		records:    make(map[int64]pgrepo.UserRecord),
		likeCounts: make(map[int64]int),
	}
	for _, id := range ids {
		stub.active[id] = true
		stub.records[id] = pgrepo.UserRecord{ID: id, IsActive: true}
	}
	return stub
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (pgrepo.UserRecord, error) {
	record, ok := s.records[userID]
	if !ok {
		return pgrepo.UserRecord{}, pgrepo.ErrUserNotFound
	}
	return record, nil
}

func (s *userStoreStub) ExistsActive(_ context.Context, _ pgx.Tx, userID int64) (bool, error) {
	return s.active[userID], nil
}

func (s *userStoreStub) IncrementTotalLikes(_ context.Context, _ pgx.Tx, userID int64) error {
	s.likeCounts[userID]++
	return nil
}

type matchStoreStub struct {
	nextID  int64
	pairs   map[[2]int64]bool
	matches int
}

func newMatchStoreStub() *matchStoreStub {
	return &matchStoreStub{pairs: make(map[[2]int64]bool)}
}

func (s *matchStoreStub) Create(_ context.Context, _ pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, error) {
	a, b := userID, targetID
	if a > b {
		a, b = b, a
	}
	if s.pairs[[2]int64{a, b}] {
		return pgrepo.MatchRecord{}, pgrepo.ErrDuplicateMatch
	}
	s.pairs[[2]int64{a, b}] = true
	s.nextID++
	return pgrepo.MatchRecord{ID: s.nextID, UserAID: a, UserBID: b}, nil
}

func (s *matchStoreStub) CountForUser(_ context.Context, _ int64) (int, error) {
	return s.matches, nil
}

type notifierStub struct {
	events []struct {
		UserID int64
		Event  string
	}
}

func (s *notifierStub) NotifyUser(_ context.Context, userID int64, event string, _ interface{}) {
	s.events = append(s.events, struct {
		UserID int64
		Event  string
	}{UserID: userID, Event: event})
}

type limiterStub struct {
	allowed    bool
	retryAfter int64
}

func (s limiterStub) Allow(context.Context, int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func newServiceForTest(swipeStore *swipeStoreStub, userStore *userStoreStub, matchStore *matchStoreStub, notifier *notifierStub) *Service {
	return &Service{
		swipeStore:  swipeStore,
		userStore:   userStore,
		matchStore:  matchStore,
		notifier:    notifier,
		rateLimiter: limiterStub{allowed: true},
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return fn(ctx, nil)
		},
		now: func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
}

func TestSwipeLikeWithoutReciprocal(t *testing.T) {
	swipeStore := newSwipeStoreStub()
	userStore := newUserStoreStub(1, 2)
	matchStore := newMatchStoreStub()
	notifier := &notifierStub{}
	svc := newServiceForTest(swipeStore, userStore, matchStore, notifier)

	result, err := svc.Swipe(context.Background(), 1, 2, "like")
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if result.IsMatch {
		t.Fatalf("one-sided like should not match")
	}
	if userStore.likeCounts[2] != 1 {
		t.Fatalf("target like count not incremented: %v", userStore.likeCounts)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("no notifications expected, got %v", notifier.events)
	}
}

func TestSwipeMutualLikeCreatesMatchAndNotifiesBoth(t *testing.T) {
	swipeStore := newSwipeStoreStub()
	userStore := newUserStoreStub(1, 2)
	matchStore := newMatchStoreStub()
	notifier := &notifierStub{}
	svc := newServiceForTest(swipeStore, userStore, matchStore, notifier)

	ctx := context.Background()
	if _, err := svc.Swipe(ctx, 2, 1, "like"); err != nil {
		t.Fatalf("first like: %v", err)
	}

	result, err := svc.Swipe(ctx, 1, 2, "like")
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if !result.IsMatch || result.Match == nil {
		t.Fatalf("mutual like should create a match, got %+v", result)
	}
	if result.Match.UserAID != 1 || result.Match.UserBID != 2 {
		t.Fatalf("match pair not normalized: %+v", result.Match)
	}

	if len(notifier.events) != 2 {
		t.Fatalf("expected notifications for both participants, got %v", notifier.events)
	}
	for _, event := range notifier.events {
		if event.Event != notify.EventNewMatch {
			t.Fatalf("unexpected event %q", event.Event)
		}
	}
}

func TestSwipePassNeverMatches(t *testing.T) {
	swipeStore := newSwipeStoreStub()
	userStore := newUserStoreStub(1, 2)
	matchStore := newMatchStoreStub()
	notifier := &notifierStub{}
	svc := newServiceForTest(swipeStore, userStore, matchStore, notifier)

	ctx := context.Background()
	if _, err := svc.Swipe(ctx, 2, 1, "like"); err != nil {
		t.Fatalf("like: %v", err)
	}

	result, err := svc.Swipe(ctx, 1, 2, "pass")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if result.IsMatch {
		t.Fatalf("pass must not create a match")
	}
	if userStore.likeCounts[2] != 0 {
		t.Fatalf("pass must not increment likes: %v", userStore.likeCounts)
	}
}

func TestSwipeRejectsBadInput(t *testing.T) {
	svc := newServiceForTest(newSwipeStoreStub(), newUserStoreStub(1, 2), newMatchStoreStub(), &notifierStub{})

	ctx := context.Background()
	if _, err := svc.Swipe(ctx, 1, 1, "like"); !errors.Is(err, ErrSelfSwipe) {
		t.Fatalf("self swipe: got err=%v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 2, "superlike"); !errors.Is(err, ErrUnsupportedAction) {
		t.Fatalf("unsupported action: got err=%v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 99, "like"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing target: got err=%v", err)
	}
}

func TestSwipeDuplicateIsTerminal(t *testing.T) {
	svc := newServiceForTest(newSwipeStoreStub(), newUserStoreStub(1, 2), newMatchStoreStub(), &notifierStub{})

	ctx := context.Background()
	if _, err := svc.Swipe(ctx, 1, 2, "pass"); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if _, err := svc.Swipe(ctx, 1, 2, "like"); !errors.Is(err, ErrDuplicateSwipe) {
		t.Fatalf("second swipe should be duplicate, got err=%v", err)
	}
}

func TestSwipeRateLimited(t *testing.T) {
	svc := newServiceForTest(newSwipeStoreStub(), newUserStoreStub(1, 2), newMatchStoreStub(), &notifierStub{})
	svc.rateLimiter = limiterStub{allowed: false, retryAfter: 30}

	_, err := svc.Swipe(context.Background(), 1, 2, "like")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited, got err=%v", err)
	}
	var limited *RateLimitedError
	if !errors.As(err, &limited) || limited.RetryAfterSec != 30 {
		t.Fatalf("expected retry after 30s, got %+v", err)
	}
}

func TestStats(t *testing.T) {
	swipeStore := newSwipeStoreStub()
	swipeStore.counts = pgrepo.SwipeCounts{Total: 10, Likes: 7, Passes: 3}
	matchStore := newMatchStoreStub()
	matchStore.matches = 4
	svc := newServiceForTest(swipeStore, newUserStoreStub(1), matchStore, &notifierStub{})

	stats, err := svc.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSwipes != 10 || stats.Likes != 7 || stats.Passes != 3 || stats.Matches != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LikeRatio != 0.7 {
		t.Fatalf("unexpected like ratio: %v", stats.LikeRatio)
	}
}
