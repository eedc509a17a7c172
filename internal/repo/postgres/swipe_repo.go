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

// ErrDuplicateSwipe is returned when the (actor, target) pair already holds a
// decision. The uniqueness lives in a storage constraint, not an application
// check, so two racing identical swipes cannot both commit.
var ErrDuplicateSwipe = errors.New("user already swiped on this target")

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

type SwipeRecord struct {
	ID           int64
	ActorUserID  int64
	TargetUserID int64
	Action       string
	CreatedAt    time.Time
}

type SwipeHistoryRecord struct {
	SwipeRecord
	TargetName         string
	TargetProfilePhoto string
	TargetBio          string
}

type SwipeCounts struct {
	Total  int
	Likes  int
	Passes int
}

func (r *SwipeRepo) Create(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action string, now time.Time) (SwipeRecord, error) {
	if actorUserID <= 0 || targetUserID <= 0 || strings.TrimSpace(action) == "" {
		return SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return SwipeRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec SwipeRecord
	err := tx.QueryRow(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4)
RETURNING id, actor_user_id, target_user_id, action, created_at
`, actorUserID, targetUserID, strings.ToLower(strings.TrimSpace(action)), now.UTC()).Scan(
		&rec.ID,
		&rec.ActorUserID,
		&rec.TargetUserID,
		&rec.Action,
		&rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "swipes_actor_target_key") {
			return SwipeRecord{}, ErrDuplicateSwipe
		}
		return SwipeRecord{}, fmt.Errorf("create swipe: %w", err)
	}

	return rec, nil
}

// HasLike reports whether actor has recorded a "like" decision about target.
// Pass decisions never count.
func (r *SwipeRepo) HasLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM swipes
WHERE actor_user_id = $1 AND target_user_id = $2 AND action = 'like'
LIMIT 1
`, actorUserID, targetUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	return true, nil
}

func (r *SwipeRepo) ListByActor(ctx context.Context, actorUserID int64, action string, offset, limit int) ([]SwipeHistoryRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if actorUserID <= 0 {
		return nil, fmt.Errorf("invalid actor user id")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	args := []any{actorUserID, limit, offset}
	actionFilter := ""
	if action != "" {
		args = append(args, action)
		actionFilter = " AND s.action = $4"
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	s.id, s.actor_user_id, s.target_user_id, s.action, s.created_at,
	COALESCE(u.name, ''),
	COALESCE(u.profile_photo, ''),
	COALESCE(u.bio, '')
FROM swipes s
JOIN users u ON u.id = s.target_user_id
WHERE s.actor_user_id = $1`+actionFilter+`
ORDER BY s.created_at DESC, s.id DESC
LIMIT $2 OFFSET $3
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list swipes by actor: %w", err)
	}
	defer rows.Close()

	items := make([]SwipeHistoryRecord, 0, limit)
	for rows.Next() {
		var item SwipeHistoryRecord
		if err := rows.Scan(
			&item.ID,
			&item.ActorUserID,
			&item.TargetUserID,
			&item.Action,
			&item.CreatedAt,
			&item.TargetName,
			&item.TargetProfilePhoto,
			&item.TargetBio,
		); err != nil {
			return nil, fmt.Errorf("scan swipe history row: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate swipe history: %w", rows.Err())
	}

	return items, nil
}

func (r *SwipeRepo) CountByActor(ctx context.Context, actorUserID int64, action string) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if actorUserID <= 0 {
		return 0, fmt.Errorf("invalid actor user id")
	}

	args := []any{actorUserID}
	actionFilter := ""
	if action != "" {
		args = append(args, action)
		actionFilter = " AND action = $2"
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM swipes
WHERE actor_user_id = $1`+actionFilter, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count swipes by actor: %w", err)
	}

	return count, nil
}

func (r *SwipeRepo) CountsByActor(ctx context.Context, actorUserID int64) (SwipeCounts, error) {
	if r.pool == nil {
		return SwipeCounts{}, fmt.Errorf("postgres pool is nil")
	}
	if actorUserID <= 0 {
		return SwipeCounts{}, fmt.Errorf("invalid actor user id")
	}

	var counts SwipeCounts
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE action = 'like'),
	COUNT(*) FILTER (WHERE action = 'pass')
FROM swipes
WHERE actor_user_id = $1
`, actorUserID).Scan(&counts.Total, &counts.Likes, &counts.Passes)
	if err != nil {
		return SwipeCounts{}, fmt.Errorf("count swipe actions: %w", err)
	}

	return counts, nil
}
