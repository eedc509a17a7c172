package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praytyushpande/crewlyx/internal/domain/model"
	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("match not found")
	ErrAccessDenied = errors.New("not a participant of this match")
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	ListForUser(ctx context.Context, userID int64, offset, limit int) ([]pgrepo.MatchWithCounterpart, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
	DeleteByID(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error)
}

type MessageStore interface {
	DeleteByMatch(ctx context.Context, tx pgx.Tx, matchID int64) (int64, error)
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MatchStore   MatchStore
	MessageStore MessageStore
}

// Counterpart is the other participant's profile as shown in match lists.
type Counterpart struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Bio          string    `json:"bio"`
	Location     string    `json:"location"`
	Skills       []string  `json:"skills"`
	ProfilePhoto string    `json:"profilePhoto"`
	LastActive   time.Time `json:"lastActive"`
}

type MatchItem struct {
	Match model.Match `json:"match"`
	User  Counterpart `json:"user"`
}

type MatchPage struct {
	Items []MatchItem
	Total int
}

type txRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Service struct {
	matchStore   MatchStore
	messageStore MessageStore
	runTx        txRunner
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	return &Service{
		matchStore:   deps.MatchStore,
		messageStore: deps.MessageStore,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
	}
}

func (s *Service) List(ctx context.Context, userID int64, offset, limit int) (MatchPage, error) {
	if userID <= 0 {
		return MatchPage{}, ErrValidation
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := s.matchStore.ListForUser(ctx, userID, offset, limit)
	if err != nil {
		return MatchPage{}, fmt.Errorf("list matches: %w", err)
	}
	total, err := s.matchStore.CountForUser(ctx, userID)
	if err != nil {
		return MatchPage{}, fmt.Errorf("count matches: %w", err)
	}

	items := make([]MatchItem, 0, len(records))
	for _, record := range records {
		items = append(items, MatchItem{
			Match: asMatch(record.MatchRecord),
			User: Counterpart{
				ID:           record.CounterpartID,
				Name:         record.CounterpartName,
				Age:          record.CounterpartAge,
				Bio:          record.CounterpartBio,
				Location:     record.CounterpartLocation,
				Skills:       record.CounterpartSkills,
				ProfilePhoto: record.CounterpartProfilePhoto,
				LastActive:   record.CounterpartLastActive,
			},
		})
	}

	return MatchPage{Items: items, Total: total}, nil
}

// Get returns a single match. Only its two participants may read it.
func (s *Service) Get(ctx context.Context, matchID, requesterID int64) (model.Match, error) {
	if matchID <= 0 || requesterID <= 0 {
		return model.Match{}, ErrValidation
	}

	record, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	match := asMatch(record)
	if !match.HasParticipant(requesterID) {
		return model.Match{}, ErrAccessDenied
	}
	return match, nil
}

// Unmatch removes the match and every message in its conversation in one
// transaction. Either participant may unmatch; the removal is permanent.
func (s *Service) Unmatch(ctx context.Context, matchID, requesterID int64) error {
	if matchID <= 0 || requesterID <= 0 {
		return ErrValidation
	}

	record, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get match: %w", err)
	}
	if record.UserAID != requesterID && record.UserBID != requesterID {
		return ErrAccessDenied
	}

	return s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.messageStore.DeleteByMatch(txCtx, tx, matchID); err != nil {
			return fmt.Errorf("delete match messages: %w", err)
		}
		deleted, err := s.matchStore.DeleteByID(txCtx, tx, matchID)
		if err != nil {
			return fmt.Errorf("delete match: %w", err)
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
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
