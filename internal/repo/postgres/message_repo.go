package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

type MessageRecord struct {
	ID        int64
	MatchID   int64
	SenderID  int64
	Content   string
	IsRead    bool
	ReadAt    *time.Time
	IsEdited  bool
	EditedAt  *time.Time
	CreatedAt time.Time
}

type MessageWithSender struct {
	MessageRecord
	SenderName         string
	SenderProfilePhoto string
}

func (r *MessageRepo) Create(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, now time.Time) (MessageRecord, error) {
	if matchID <= 0 || senderID <= 0 || strings.TrimSpace(content) == "" {
		return MessageRecord{}, fmt.Errorf("invalid message payload")
	}
	if tx == nil {
		return MessageRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec MessageRecord
	err := tx.QueryRow(ctx, `
INSERT INTO messages (
	match_id,
	sender_id,
	content,
	is_read,
	is_edited,
	created_at
) VALUES ($1, $2, $3, FALSE, FALSE, $4)
RETURNING id, match_id, sender_id, content, is_read, read_at, is_edited, edited_at, created_at
`, matchID, senderID, content, now.UTC()).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Content,
		&rec.IsRead,
		&rec.ReadAt,
		&rec.IsEdited,
		&rec.EditedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return MessageRecord{}, fmt.Errorf("create message: %w", err)
	}

	return rec, nil
}

// ListByMatch returns messages newest-first; page 1 holds the most recent
// messages. Callers reverse the slice for chronological display.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID int64, offset, limit int) ([]MessageWithSender, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if matchID <= 0 {
		return nil, fmt.Errorf("invalid match id")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id, m.match_id, m.sender_id, m.content,
	m.is_read, m.read_at, m.is_edited, m.edited_at, m.created_at,
	COALESCE(u.name, ''),
	COALESCE(u.profile_photo, '')
FROM messages m
JOIN users u ON u.id = m.sender_id
WHERE m.match_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2 OFFSET $3
`, matchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages by match: %w", err)
	}
	defer rows.Close()

	items := make([]MessageWithSender, 0, limit)
	for rows.Next() {
		var item MessageWithSender
		if err := rows.Scan(
			&item.ID,
			&item.MatchID,
			&item.SenderID,
			&item.Content,
			&item.IsRead,
			&item.ReadAt,
			&item.IsEdited,
			&item.EditedAt,
			&item.CreatedAt,
			&item.SenderName,
			&item.SenderProfilePhoto,
		); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

func (r *MessageRepo) CountByMatch(ctx context.Context, matchID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if matchID <= 0 {
		return 0, fmt.Errorf("invalid match id")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages
WHERE match_id = $1
`, matchID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages by match: %w", err)
	}

	return count, nil
}

func (r *MessageRepo) GetByID(ctx context.Context, messageID int64) (MessageRecord, error) {
	if r.pool == nil {
		return MessageRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if messageID <= 0 {
		return MessageRecord{}, fmt.Errorf("invalid message id")
	}

	var rec MessageRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, match_id, sender_id, content, is_read, read_at, is_edited, edited_at, created_at
FROM messages
WHERE id = $1
`, messageID).Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.SenderID,
		&rec.Content,
		&rec.IsRead,
		&rec.ReadAt,
		&rec.IsEdited,
		&rec.EditedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MessageRecord{}, ErrMessageNotFound
		}
		return MessageRecord{}, fmt.Errorf("get message by id: %w", err)
	}

	return rec, nil
}

func (r *MessageRepo) DeleteByID(ctx context.Context, tx pgx.Tx, messageID int64) error {
	if messageID <= 0 {
		return fmt.Errorf("invalid message id")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE id = $1
`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMessageNotFound
	}

	return nil
}

// DeleteByMatch removes a match's whole conversation. Invoked inside the
// unmatch transaction so no message outlives its match.
func (r *MessageRepo) DeleteByMatch(ctx context.Context, tx pgx.Tx, matchID int64) (int64, error) {
	if matchID <= 0 {
		return 0, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM messages
WHERE match_id = $1
`, matchID)
	if err != nil {
		return 0, fmt.Errorf("delete messages by match: %w", err)
	}

	return result.RowsAffected(), nil
}

// MarkAllRead flags every unread message in the match that the reader did not
// send. The reader's own messages are never touched.
func (r *MessageRepo) MarkAllRead(ctx context.Context, matchID, readerID int64, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if matchID <= 0 || readerID <= 0 {
		return 0, fmt.Errorf("invalid mark read payload")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := r.pool.Exec(ctx, `
UPDATE messages
SET is_read = TRUE, read_at = $3
WHERE match_id = $1 AND sender_id <> $2 AND NOT is_read
`, matchID, readerID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountUnreadForUser counts unread messages addressed to the user across all
// of their matches.
func (r *MessageRepo) CountUnreadForUser(ctx context.Context, userID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages msg
JOIN matches m ON m.id = msg.match_id
WHERE
	(m.user_a_id = $1 OR m.user_b_id = $1)
	AND msg.sender_id <> $1
	AND NOT msg.is_read
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}

	return count, nil
}
