package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praytyushpande/crewlyx/internal/domain/enums"
	"github.com/praytyushpande/crewlyx/internal/domain/model"
	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var (
	ErrValidation        = errors.New("validation error")
	ErrSelfSwipe         = errors.New("cannot swipe on yourself")
	ErrUnsupportedAction = errors.New("unsupported swipe action")
	ErrUserNotFound      = errors.New("target user not found")
	ErrDuplicateSwipe    = errors.New("already swiped on this user")
	ErrDuplicateMatch    = errors.New("match already exists")
	ErrRateLimited       = errors.New("swipe rate limit exceeded")
)

type SwipeStore interface {
	Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (pgrepo.SwipeRecord, error)
	HasLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
	ListByActor(ctx context.Context, actorUserID int64, action string, offset, limit int) ([]pgrepo.SwipeHistoryRecord, error)
	CountByActor(ctx context.Context, actorUserID int64, action string) (int, error)
	CountsByActor(ctx context.Context, actorUserID int64) (pgrepo.SwipeCounts, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
	ExistsActive(ctx context.Context, tx pgx.Tx, userID int64) (bool, error)
	IncrementTotalLikes(ctx context.Context, tx pgx.Tx, userID int64) error
}

type MatchStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (pgrepo.MatchRecord, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, event string, data interface{})
}

type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (int64, bool, error)
}

// RateLimitedError satisfies errors.Is against ErrRateLimited and carries
// the seconds a client should wait before retrying.
type RateLimitedError struct {
	RetryAfterSec int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("swipe rate limit exceeded, retry after %ds", e.RetryAfterSec)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

type Dependencies struct {
	Pool        *pgxpool.Pool
	SwipeStore  SwipeStore
	UserStore   UserStore
	MatchStore  MatchStore
	Notifier    Notifier
	RateLimiter RateLimiter
}

type SwipeResult struct {
	Swipe   model.Swipe
	IsMatch bool
	Match   *model.Match
}

// MatchEvent is the payload delivered to both participants when a mutual
// like produces a match.
type MatchEvent struct {
	Match model.Match         `json:"match"`
	User  model.PublicProfile `json:"user"`
}

type HistoryItem struct {
	Swipe              model.Swipe
	TargetName         string
	TargetProfilePhoto string
	TargetBio          string
}

type HistoryPage struct {
	Items []HistoryItem
	Total int
}

type Stats struct {
	TotalSwipes int
	Likes       int
	Passes      int
	Matches     int
	LikeRatio   float64
}

type txRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Service struct {
	swipeStore  SwipeStore
	userStore   UserStore
	matchStore  MatchStore
	notifier    Notifier
	rateLimiter RateLimiter
	runTx       txRunner
	now         func() time.Time
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	return &Service{
		swipeStore:  deps.SwipeStore,
		userStore:   deps.UserStore,
		matchStore:  deps.MatchStore,
		notifier:    deps.Notifier,
		rateLimiter: deps.RateLimiter,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// Swipe records a like or pass decision. A decision is final for the pair;
// repeating it fails with ErrDuplicateSwipe. A like that meets an existing
// reciprocal like creates a match in the same transaction, and both
// participants are notified after commit.
func (s *Service) Swipe(ctx context.Context, actorID, targetID int64, action string) (SwipeResult, error) {
	if actorID <= 0 || targetID <= 0 {
		return SwipeResult{}, ErrValidation
	}
	if actorID == targetID {
		return SwipeResult{}, ErrSelfSwipe
	}

	normalized := strings.ToLower(strings.TrimSpace(action))
	if normalized != string(enums.SwipeActionLike) && normalized != string(enums.SwipeActionPass) {
		return SwipeResult{}, ErrUnsupportedAction
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.Allow(ctx, actorID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("check swipe rate: %w", err)
		}
		if !allowed {
			return SwipeResult{}, &RateLimitedError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	var (
		swipe pgrepo.SwipeRecord
		match *pgrepo.MatchRecord
	)

	err := s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		exists, err := s.userStore.ExistsActive(txCtx, tx, targetID)
		if err != nil {
			return fmt.Errorf("check target user: %w", err)
		}
		if !exists {
			return ErrUserNotFound
		}

		swipe, err = s.swipeStore.Create(txCtx, tx, actorID, targetID, normalized, now)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateSwipe) {
				return ErrDuplicateSwipe
			}
			return fmt.Errorf("create swipe: %w", err)
		}

		if normalized != string(enums.SwipeActionLike) {
			return nil
		}

		if err := s.userStore.IncrementTotalLikes(txCtx, tx, targetID); err != nil {
			return fmt.Errorf("increment total likes: %w", err)
		}

		mutual, err := s.swipeStore.HasLike(txCtx, tx, targetID, actorID)
		if err != nil {
			return fmt.Errorf("check reciprocal like: %w", err)
		}
		if !mutual {
			return nil
		}

		created, err := s.matchStore.Create(txCtx, tx, actorID, targetID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDuplicateMatch) {
				return ErrDuplicateMatch
			}
			return fmt.Errorf("create match: %w", err)
		}
		match = &created
		return nil
	})
	if err != nil {
		return SwipeResult{}, err
	}

	result := SwipeResult{Swipe: asSwipe(swipe)}
	if match != nil {
		matchModel := asMatch(*match)
		result.IsMatch = true
		result.Match = &matchModel
		s.notifyMatch(ctx, matchModel, actorID, targetID)
	}

	return result, nil
}

func (s *Service) History(ctx context.Context, actorID int64, action string, offset, limit int) (HistoryPage, error) {
	if actorID <= 0 {
		return HistoryPage{}, ErrValidation
	}

	normalized := strings.ToLower(strings.TrimSpace(action))
	if normalized != "" && normalized != string(enums.SwipeActionLike) && normalized != string(enums.SwipeActionPass) {
		return HistoryPage{}, ErrUnsupportedAction
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.swipeStore.ListByActor(ctx, actorID, normalized, offset, limit)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("list swipes: %w", err)
	}
	total, err := s.swipeStore.CountByActor(ctx, actorID, normalized)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("count swipes: %w", err)
	}

	items := make([]HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, HistoryItem{
			Swipe:              asSwipe(record.SwipeRecord),
			TargetName:         record.TargetName,
			TargetProfilePhoto: record.TargetProfilePhoto,
			TargetBio:          record.TargetBio,
		})
	}

	return HistoryPage{Items: items, Total: total}, nil
}

func (s *Service) Stats(ctx context.Context, actorID int64) (Stats, error) {
	if actorID <= 0 {
		return Stats{}, ErrValidation
	}

	counts, err := s.swipeStore.CountsByActor(ctx, actorID)
	if err != nil {
		return Stats{}, fmt.Errorf("count swipes: %w", err)
	}
	matches, err := s.matchStore.CountForUser(ctx, actorID)
	if err != nil {
		return Stats{}, fmt.Errorf("count matches: %w", err)
	}

	stats := Stats{
		TotalSwipes: counts.Total,
		Likes:       counts.Likes,
		Passes:      counts.Passes,
		Matches:     matches,
	}
	if counts.Total > 0 {
		stats.LikeRatio = float64(counts.Likes) / float64(counts.Total)
	}
	return stats, nil
}

func (s *Service) notifyMatch(ctx context.Context, match model.Match, actorID, targetID int64) {
	if s.notifier == nil {
		return
	}

	actor, actorErr := s.userStore.GetByID(ctx, actorID)
	target, targetErr := s.userStore.GetByID(ctx, targetID)

	if targetErr == nil {
		s.notifier.NotifyUser(ctx, actorID, notify.EventNewMatch, MatchEvent{
			Match: match,
			User:  asPublicProfile(target),
		})
	}
	if actorErr == nil {
		s.notifier.NotifyUser(ctx, targetID, notify.EventNewMatch, MatchEvent{
			Match: match,
			User:  asPublicProfile(actor),
		})
	}
}

func asSwipe(record pgrepo.SwipeRecord) model.Swipe {
	return model.Swipe{
		ID:           record.ID,
		ActorUserID:  record.ActorUserID,
		TargetUserID: record.TargetUserID,
		Action:       enums.SwipeAction(record.Action),
		CreatedAt:    record.CreatedAt,
	}
}

func asMatch(record pgrepo.MatchRecord) model.Match {
	match := model.Match{
		ID:           record.ID,
		UserAID:      record.UserAID,
		UserBID:      record.UserBID,
		MessageCount: record.MessageCount,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.LastMessageAt != nil {
		match.LastMessage = &model.LastMessageSummary{
			Content:  record.LastMessageContent,
			SenderID: record.LastMessageSenderID,
			SentAt:   *record.LastMessageAt,
		}
	}
	return match
}

func asPublicProfile(record pgrepo.UserRecord) model.PublicProfile {
	return model.User{
		ID:           record.ID,
		Name:         record.Name,
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
	}.Public()
}
