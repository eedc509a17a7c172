package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrDuplicateMatch = errors.New("match for this pair already exists")
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

type MatchRecord struct {
	ID                  int64
	UserAID             int64
	UserBID             int64
	LastMessageContent  string
	LastMessageSenderID int64
	LastMessageAt       *time.Time
	MessageCount        int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MatchWithCounterpart pairs a match row with the other participant's public
// profile fields for list views.
type MatchWithCounterpart struct {
	MatchRecord
	CounterpartID           int64
	CounterpartName         string
	CounterpartAge          int
	CounterpartBio          string
	CounterpartLocation     string
	CounterpartSkills       []string
	CounterpartProfilePhoto string
	CounterpartLastActive   time.Time
}

// Create inserts a match for the unordered pair. The pair is normalized so
// the unique constraint on (user_a_id, user_b_id) covers both orderings; an
// existing row is surfaced as ErrDuplicateMatch.
func (r *MatchRepo) Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (MatchRecord, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return MatchRecord{}, fmt.Errorf("invalid match pair")
	}
	if tx == nil {
		return MatchRecord{}, fmt.Errorf("transaction is required")
	}

	userA, userB := orderPair(userID, targetID)

	var rec MatchRecord
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	message_count,
	created_at,
	updated_at
) VALUES ($1, $2, 0, NOW(), NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id, user_a_id, user_b_id, message_count, created_at, updated_at
`, userA, userB).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.MessageCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrDuplicateMatch
		}
		return MatchRecord{}, fmt.Errorf("create match: %w", err)
	}

	return rec, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID int64) (MatchRecord, error) {
	if r.pool == nil {
		return MatchRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if matchID <= 0 {
		return MatchRecord{}, fmt.Errorf("invalid match id")
	}

	var rec MatchRecord
	err := r.pool.QueryRow(ctx, `
SELECT
	id, user_a_id, user_b_id,
	COALESCE(last_message_content, ''),
	COALESCE(last_message_sender_id, 0),
	last_message_at,
	message_count, created_at, updated_at
FROM matches
WHERE id = $1
`, matchID).Scan(
		&rec.ID,
		&rec.UserAID,
		&rec.UserBID,
		&rec.LastMessageContent,
		&rec.LastMessageSenderID,
		&rec.LastMessageAt,
		&rec.MessageCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MatchRecord{}, ErrMatchNotFound
		}
		return MatchRecord{}, fmt.Errorf("get match by id: %w", err)
	}

	return rec, nil
}

// ListForUser returns the user's matches most-recently-updated first, each
// joined with the counterpart's profile fields.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, offset, limit int) ([]MatchWithCounterpart, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id, m.user_a_id, m.user_b_id,
	COALESCE(m.last_message_content, ''),
	COALESCE(m.last_message_sender_id, 0),
	m.last_message_at,
	m.message_count, m.created_at, m.updated_at,
	u.id, u.name, u.age,
	COALESCE(u.bio, ''),
	COALESCE(u.location, ''),
	u.skills,
	COALESCE(u.profile_photo, ''),
	u.last_active
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.updated_at DESC, m.id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list matches for user: %w", err)
	}
	defer rows.Close()

	items := make([]MatchWithCounterpart, 0, limit)
	for rows.Next() {
		var item MatchWithCounterpart
		if err := rows.Scan(
			&item.ID,
			&item.UserAID,
			&item.UserBID,
			&item.LastMessageContent,
			&item.LastMessageSenderID,
			&item.LastMessageAt,
			&item.MessageCount,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.CounterpartID,
			&item.CounterpartName,
			&item.CounterpartAge,
			&item.CounterpartBio,
			&item.CounterpartLocation,
			pq.Array(&item.CounterpartSkills),
			&item.CounterpartProfilePhoto,
			&item.CounterpartLastActive,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) CountForUser(ctx context.Context, userID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM matches
WHERE user_a_id = $1 OR user_b_id = $1
`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches for user: %w", err)
	}

	return count, nil
}

func (r *MatchRepo) DeleteByID(ctx context.Context, tx pgx.Tx, matchID int64) (bool, error) {
	if matchID <= 0 {
		return false, fmt.Errorf("invalid match id")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE id = $1
`, matchID)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ApplyLastMessage refreshes the denormalized last-message summary and bumps
// message_count. Runs in the same transaction as the message insert so the
// cache cannot drift from the messages table.
func (r *MatchRepo) ApplyLastMessage(ctx context.Context, tx pgx.Tx, matchID, senderID int64, content string, at time.Time) error {
	if matchID <= 0 || senderID <= 0 {
		return fmt.Errorf("invalid last message payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	result, err := tx.Exec(ctx, `
UPDATE matches
SET
	last_message_content = $2,
	last_message_sender_id = $3,
	last_message_at = $4,
	message_count = message_count + 1,
	updated_at = NOW()
WHERE id = $1
`, matchID, content, senderID, at.UTC())
	if err != nil {
		return fmt.Errorf("apply last message: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMatchNotFound
	}

	return nil
}

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
