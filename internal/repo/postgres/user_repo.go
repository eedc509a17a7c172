package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type UserRecord struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Bio          string
	Location     string
	Experience   string
	Skills       []string
	Interests    []string
	LookingFor   string
	Availability string
	ProfilePhoto string
	IsActive     bool
	LastActive   time.Time
	ProfileViews int
	TotalLikes   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Bio          string
	Location     string
	Experience   string
	Skills       []string
	Interests    []string
	LookingFor   string
	Availability string
	ProfilePhoto string
}

type UpdateProfileParams struct {
	Name         *string
	Age          *int
	Bio          *string
	Location     *string
	Experience   *string
	Skills       []string
	Interests    []string
	LookingFor   *string
	Availability *string
	ProfilePhoto *string
}

type DiscoverFilter struct {
	LookingFor string
	Location   string
	Skills     []string
}

const userColumns = `
id, name, email, password_hash, age, bio, location, experience,
skills, interests, looking_for, availability, profile_photo,
is_active, last_active, profile_views, total_likes, created_at, updated_at`

func scanUser(row pgx.Row) (UserRecord, error) {
	var rec UserRecord
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.PasswordHash,
		&rec.Age,
		&rec.Bio,
		&rec.Location,
		&rec.Experience,
		pq.Array(&rec.Skills),
		pq.Array(&rec.Interests),
		&rec.LookingFor,
		&rec.Availability,
		&rec.ProfilePhoto,
		&rec.IsActive,
		&rec.LastActive,
		&rec.ProfileViews,
		&rec.TotalLikes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

func (r *UserRepo) Create(ctx context.Context, params CreateUserParams) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(params.Email) == "" || strings.TrimSpace(params.PasswordHash) == "" {
		return UserRecord{}, fmt.Errorf("invalid user payload")
	}

	rec, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (
	name, email, password_hash, age, bio, location, experience,
	skills, interests, looking_for, availability, profile_photo,
	is_active, last_active, profile_views, total_likes, created_at, updated_at
) VALUES (
	$1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
	TRUE, NOW(), 0, 0, NOW(), NOW()
)
RETURNING `+userColumns,
		params.Name,
		strings.TrimSpace(params.Email),
		params.PasswordHash,
		params.Age,
		params.Bio,
		params.Location,
		params.Experience,
		pq.Array(params.Skills),
		pq.Array(params.Interests),
		params.LookingFor,
		params.Availability,
		params.ProfilePhoto,
	))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return UserRecord{}, ErrEmailTaken
		}
		return UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	rec, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by id: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(email) == "" {
		return UserRecord{}, fmt.Errorf("email is required")
	}

	rec, err := scanUser(r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE email = LOWER($1)
`, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}

	return rec, nil
}

// ExistsActive reports whether the user exists with is_active=true. It runs
// inside the caller's transaction so the swipe insert and the target check
// observe one snapshot.
func (r *UserRepo) ExistsActive(ctx context.Context, tx pgx.Tx, userID int64) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM users
WHERE id = $1 AND is_active
`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return true, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID int64, params UpdateProfileParams) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	rec, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users SET
	name = COALESCE($2, name),
	age = COALESCE($3, age),
	bio = COALESCE($4, bio),
	location = COALESCE($5, location),
	experience = COALESCE($6, experience),
	skills = COALESCE($7::text[], skills),
	interests = COALESCE($8::text[], interests),
	looking_for = COALESCE($9, looking_for),
	availability = COALESCE($10, availability),
	profile_photo = COALESCE($11, profile_photo),
	updated_at = NOW()
WHERE id = $1
RETURNING `+userColumns,
		userID,
		params.Name,
		params.Age,
		params.Bio,
		params.Location,
		params.Experience,
		pq.Array(params.Skills),
		pq.Array(params.Interests),
		params.LookingFor,
		params.Availability,
		params.ProfilePhoto,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("update user profile: %w", err)
	}

	return rec, nil
}

// Discover returns active users the given user has not swiped on yet,
// most recently active first.
func (r *UserRepo) Discover(ctx context.Context, userID int64, filter DiscoverFilter, limit int) ([]UserRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 20
	}

	args := []any{userID, limit}
	var conditions strings.Builder
	if filter.LookingFor != "" && filter.LookingFor != "any" {
		args = append(args, filter.LookingFor)
		fmt.Fprintf(&conditions, " AND u.looking_for = $%d", len(args))
	}
	if strings.TrimSpace(filter.Location) != "" {
		args = append(args, "%"+strings.TrimSpace(filter.Location)+"%")
		fmt.Fprintf(&conditions, " AND u.location ILIKE $%d", len(args))
	}
	if len(filter.Skills) > 0 {
		args = append(args, pq.Array(filter.Skills))
		fmt.Fprintf(&conditions, " AND u.skills && $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+prefixColumns("u", userColumns)+`
FROM users u
WHERE
	u.id <> $1
	AND u.is_active
	AND NOT EXISTS (
		SELECT 1
		FROM swipes s
		WHERE s.actor_user_id = $1 AND s.target_user_id = u.id
	)`+conditions.String()+`
ORDER BY u.last_active DESC, u.id DESC
LIMIT $2
`, args...)
	if err != nil {
		return nil, fmt.Errorf("discover users: %w", err)
	}
	defer rows.Close()

	items := make([]UserRecord, 0, limit)
	for rows.Next() {
		rec, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discovered user: %w", err)
		}
		items = append(items, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate discovered users: %w", rows.Err())
	}

	return items, nil
}

// IncrementTotalLikes is an atomic counter update; concurrent likes against
// the same target must not lose increments.
func (r *UserRepo) IncrementTotalLikes(ctx context.Context, tx pgx.Tx, userID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := tx.Exec(ctx, `
UPDATE users
SET total_likes = total_likes + 1
WHERE id = $1
`, userID); err != nil {
		return fmt.Errorf("increment total likes: %w", err)
	}

	return nil
}

func (r *UserRepo) IncrementProfileViews(ctx context.Context, userID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET profile_views = profile_views + 1
WHERE id = $1
`, userID); err != nil {
		return fmt.Errorf("increment profile views: %w", err)
	}

	return nil
}

func (r *UserRepo) TouchLastActive(ctx context.Context, userID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE users
SET last_active = NOW()
WHERE id = $1
`, userID); err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}

	return nil
}

func (r *UserRepo) Deactivate(ctx context.Context, userID int64) (UserRecord, error) {
	if r.pool == nil {
		return UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return UserRecord{}, fmt.Errorf("invalid user id")
	}

	rec, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users
SET is_active = FALSE, updated_at = NOW()
WHERE id = $1
RETURNING `+userColumns, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, fmt.Errorf("deactivate user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) SetProfilePhoto(ctx context.Context, userID int64, url string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(url) == "" {
		return fmt.Errorf("invalid profile photo payload")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE users
SET profile_photo = $2, updated_at = NOW()
WHERE id = $1
`, userID, strings.TrimSpace(url))
	if err != nil {
		return fmt.Errorf("set profile photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
