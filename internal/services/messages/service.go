package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praytyushpande/crewlyx/internal/domain/model"
	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
	"github.com/praytyushpande/crewlyx/internal/services/notify"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

var (
	ErrValidation   = errors.New("validation error")
	ErrMatchGone    = errors.New("match not found")
	ErrNotFound     = errors.New("message not found")
	ErrAccessDenied = errors.New("access denied")
	ErrRateLimited  = errors.New("message rate limit exceeded")
)

type RateLimitedError struct {
	RetryAfterSec int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("message rate limit exceeded, retry after %ds", e.RetryAfterSec)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

type MessageStore interface {
	Create(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, now time.Time) (pgrepo.MessageRecord, error)
	ListByMatch(ctx context.Context, matchID int64, offset, limit int) ([]pgrepo.MessageWithSender, error)
	CountByMatch(ctx context.Context, matchID int64) (int, error)
	GetByID(ctx context.Context, messageID int64) (pgrepo.MessageRecord, error)
	DeleteByID(ctx context.Context, tx pgx.Tx, messageID int64) error
	MarkAllRead(ctx context.Context, matchID, readerID int64, now time.Time) (int64, error)
	CountUnreadForUser(ctx context.Context, userID int64) (int, error)
}

type MatchStore interface {
	GetByID(ctx context.Context, matchID int64) (pgrepo.MatchRecord, error)
	ApplyLastMessage(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, at time.Time) error
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, event string, data interface{})
	NotifyMatch(ctx context.Context, matchID int64, event string, data interface{})
}

type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (int64, bool, error)
}

type Dependencies struct {
	Pool         *pgxpool.Pool
	MessageStore MessageStore
	MatchStore   MatchStore
	Notifier     Notifier
	RateLimiter  RateLimiter
}

type MessageItem struct {
	Message            model.Message `json:"message"`
	SenderName         string        `json:"senderName"`
	SenderProfilePhoto string        `json:"senderProfilePhoto"`
}

type MessagePage struct {
	Items []MessageItem
	Total int
}

// MessageEvent is published to the match channel when a message is sent.
type MessageEvent struct {
	Message model.Message `json:"message"`
}

// MessageNotificationEvent is delivered to the recipient's user channel so
// clients not looking at the conversation can show a badge.
type MessageNotificationEvent struct {
	MatchID  int64  `json:"matchId"`
	SenderID int64  `json:"senderId"`
	Preview  string `json:"preview"`
}

// MessageDeletedEvent is published to the match channel when a sender
// removes one of their messages.
type MessageDeletedEvent struct {
	MessageID int64 `json:"messageId"`
	MatchID   int64 `json:"matchId"`
}

type txRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Service struct {
	messageStore MessageStore
	matchStore   MatchStore
	notifier     Notifier
	rateLimiter  RateLimiter
	runTx        txRunner
	now          func() time.Time
}

func NewService(deps Dependencies) *Service {
	pool := deps.Pool
	return &Service{
		messageStore: deps.MessageStore,
		matchStore:   deps.MatchStore,
		notifier:     deps.Notifier,
		rateLimiter:  deps.RateLimiter,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

// List returns a page of the conversation in chronological order and marks
// the other participant's messages as read.
func (s *Service) List(ctx context.Context, matchID, requesterID int64, offset, limit int) (MessagePage, error) {
	if matchID <= 0 || requesterID <= 0 {
		return MessagePage{}, ErrValidation
	}
	if _, err := s.requireParticipant(ctx, matchID, requesterID); err != nil {
		return MessagePage{}, err
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

	records, err := s.messageStore.ListByMatch(ctx, matchID, offset, limit)
	if err != nil {
		return MessagePage{}, fmt.Errorf("list messages: %w", err)
	}
	total, err := s.messageStore.CountByMatch(ctx, matchID)
	if err != nil {
		return MessagePage{}, fmt.Errorf("count messages: %w", err)
	}

	if _, err := s.messageStore.MarkAllRead(ctx, matchID, requesterID, s.now().UTC()); err != nil {
		return MessagePage{}, fmt.Errorf("mark messages read: %w", err)
	}

	// Storage returns the newest page first; clients want it oldest first.
	items := make([]MessageItem, len(records))
	for i, record := range records {
		items[len(records)-1-i] = MessageItem{
			Message:            asMessage(record.MessageRecord),
			SenderName:         record.SenderName,
			SenderProfilePhoto: record.SenderProfilePhoto,
		}
	}

	return MessagePage{Items: items, Total: total}, nil
}

// Send stores a message and bumps the match's conversation summary in the
// same transaction. The match channel and the recipient are notified after
// commit.
func (s *Service) Send(ctx context.Context, matchID, senderID int64, content string) (model.Message, error) {
	if matchID <= 0 || senderID <= 0 {
		return model.Message{}, ErrValidation
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return model.Message{}, fmt.Errorf("message content is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > model.MaxMessageLength {
		return model.Message{}, fmt.Errorf("message exceeds %d characters: %w", model.MaxMessageLength, ErrValidation)
	}

	match, err := s.requireParticipant(ctx, matchID, senderID)
	if err != nil {
		return model.Message{}, err
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.Allow(ctx, senderID)
		if err != nil {
			return model.Message{}, fmt.Errorf("check message rate: %w", err)
		}
		if !allowed {
			return model.Message{}, &RateLimitedError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()
	var record pgrepo.MessageRecord
	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		record, err = s.messageStore.Create(txCtx, tx, matchID, senderID, trimmed, now)
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := s.matchStore.ApplyLastMessage(txCtx, tx, matchID, senderID, trimmed, now); err != nil {
			return fmt.Errorf("update match summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Message{}, err
	}

	message := asMessage(record)
	if s.notifier != nil {
		s.notifier.NotifyMatch(ctx, matchID, notify.EventNewMessage, MessageEvent{Message: message})
		s.notifier.NotifyUser(ctx, otherParticipant(match, senderID), notify.EventMessageNotification, MessageNotificationEvent{
			MatchID:  matchID,
			SenderID: senderID,
			Preview:  preview(trimmed),
		})
	}

	return message, nil
}

// Delete removes a message. Only its sender may delete it.
func (s *Service) Delete(ctx context.Context, messageID, requesterID int64) error {
	if messageID <= 0 || requesterID <= 0 {
		return ErrValidation
	}

	record, err := s.messageStore.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}
	if record.SenderID != requesterID {
		return ErrAccessDenied
	}

	err = s.runTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.messageStore.DeleteByID(txCtx, tx, messageID); err != nil {
			if errors.Is(err, pgrepo.ErrMessageNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("delete message: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyMatch(ctx, record.MatchID, notify.EventMessageDeleted, MessageDeletedEvent{
			MessageID: messageID,
			MatchID:   record.MatchID,
		})
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, matchID, readerID int64) (int64, error) {
	if matchID <= 0 || readerID <= 0 {
		return 0, ErrValidation
	}
	if _, err := s.requireParticipant(ctx, matchID, readerID); err != nil {
		return 0, err
	}

	marked, err := s.messageStore.MarkAllRead(ctx, matchID, readerID, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return marked, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}

	count, err := s.messageStore.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

func (s *Service) requireParticipant(ctx context.Context, matchID, userID int64) (pgrepo.MatchRecord, error) {
	match, err := s.matchStore.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return pgrepo.MatchRecord{}, ErrMatchGone
		}
		return pgrepo.MatchRecord{}, fmt.Errorf("get match: %w", err)
	}
	if match.UserAID != userID && match.UserBID != userID {
		return pgrepo.MatchRecord{}, ErrAccessDenied
	}
	return match, nil
}

func otherParticipant(match pgrepo.MatchRecord, userID int64) int64 {
	if match.UserAID == userID {
		return match.UserBID
	}
	return match.UserAID
}

func preview(content string) string {
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max])
}

func asMessage(record pgrepo.MessageRecord) model.Message {
	return model.Message{
		ID:        record.ID,
		MatchID:   record.MatchID,
		SenderID:  record.SenderID,
		Content:   record.Content,
		IsRead:    record.IsRead,
		ReadAt:    record.ReadAt,
		IsEdited:  record.IsEdited,
		EditedAt:  record.EditedAt,
		CreatedAt: record.CreatedAt,
	}
}
