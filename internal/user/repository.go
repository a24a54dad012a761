// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

// Repository is the persistence port the lifecycle service runs on.
// Lookups of a missing user return an error wrapping core.ErrNotFound.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUserName(ctx context.Context, userName string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	FindAll(ctx context.Context) ([]User, error)
	FindPage(ctx context.Context, req PageRequest) ([]User, int64, error)
	FindByActive(ctx context.Context, active bool) ([]User, error)
	FindByRole(ctx context.Context, role Role) ([]User, error)
	FindByActiveAndRole(
		ctx context.Context,
		active bool,
		role Role,
	) ([]User, error)
	SearchByFullName(ctx context.Context, fragment string) ([]User, error)
	FindCreatedBetween(
		ctx context.Context,
		start, end time.Time,
	) ([]User, error)
	FindCreatedAfter(ctx context.Context, since time.Time) ([]User, error)

	// Save inserts u when it has no ID and updates it otherwise, setting
	// ID and timestamps on u in place.
	Save(ctx context.Context, u *User) error
	DeleteByID(ctx context.Context, id int64) error

	CountByRole(ctx context.Context, role Role) (int64, error)
	CountByActive(ctx context.Context, active bool) (int64, error)
}

const userColumns = `id, user_name, email, full_name, role, active,
		       created_at, updated_at`

type repository struct {
	db  core.DBTX
	now func() time.Time
}

type RepositoryOption func(*repository)

// WithClock replaces the timestamp source used by Save.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *repository) {
		r.now = now
	}
}

func NewRepository(db core.DBTX, opts ...RepositoryOption) Repository {
	r := &repository{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, "find user by id", "id = ?", id)
}

func (r *repository) FindByUserName(
	ctx context.Context,
	userName string,
) (*User, error) {
	return r.findOne(ctx, "find user by username", "user_name = ?", userName)
}

func (r *repository) FindByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.findOne(ctx, "find user by email", "email = ?", email)
}

func (r *repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, "check id exists", "id = ?", id)
}

func (r *repository) ExistsByUserName(
	ctx context.Context,
	userName string,
) (bool, error) {
	return r.exists(ctx, "check username exists", "user_name = ?", userName)
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return r.exists(ctx, "check email exists", "email = ?", email)
}

func (r *repository) FindAll(ctx context.Context) ([]User, error) {
	return r.findMany(ctx, "list users", "", "id ASC")
}

func (r *repository) FindPage(
	ctx context.Context,
	req PageRequest,
) ([]User, int64, error) {
	var total int64
	if err := r.db.GetContext(
		ctx,
		&total,
		"SELECT COUNT(*) FROM users",
	); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	orderBy := req.Sort.column() + " " + req.Sort.direction()
	if req.Sort.column() != "id" {
		orderBy += ", id ASC"
	}

	//nolint:gosec // G201: ORDER BY built from the sortColumns allowlist
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		ORDER BY %s
		LIMIT ? OFFSET ?`,
		userColumns, orderBy)

	users := []User{}
	if err := r.db.SelectContext(
		ctx,
		&users,
		r.db.Rebind(query),
		req.Size,
		req.Offset(),
	); err != nil {
		return nil, 0, fmt.Errorf("list users page: %w", err)
	}

	return users, total, nil
}

func (r *repository) FindByActive(
	ctx context.Context,
	active bool,
) ([]User, error) {
	return r.findMany(ctx, "list users by active", "active = ?", "id ASC", active)
}

func (r *repository) FindByRole(ctx context.Context, role Role) ([]User, error) {
	return r.findMany(
		ctx,
		"list users by role",
		"role = ?",
		"id ASC",
		string(role),
	)
}

func (r *repository) FindByActiveAndRole(
	ctx context.Context,
	active bool,
	role Role,
) ([]User, error) {
	return r.findMany(
		ctx,
		"list users by active and role",
		"active = ? AND role = ?",
		"id ASC",
		active,
		string(role),
	)
}

func (r *repository) SearchByFullName(
	ctx context.Context,
	fragment string,
) ([]User, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	return r.findMany(
		ctx,
		"search users by full name",
		`LOWER(full_name) LIKE ? ESCAPE '\'`,
		"full_name ASC, id ASC",
		pattern,
	)
}

func (r *repository) FindCreatedBetween(
	ctx context.Context,
	start, end time.Time,
) ([]User, error) {
	return r.findMany(
		ctx,
		"list users created between",
		"created_at >= ? AND created_at <= ?",
		"created_at ASC, id ASC",
		start.UTC(),
		end.UTC(),
	)
}

func (r *repository) FindCreatedAfter(
	ctx context.Context,
	since time.Time,
) ([]User, error) {
	return r.findMany(
		ctx,
		"list users created after",
		"created_at > ?",
		"created_at ASC, id ASC",
		since.UTC(),
	)
}

func (r *repository) Save(ctx context.Context, u *User) error {
	if u.IsNew() {
		return r.insert(ctx, u)
	}
	return r.update(ctx, u)
}

func (r *repository) insert(ctx context.Context, u *User) error {
	now := r.timestamp()

	query := `
		INSERT INTO users (user_name, email, full_name, role, active,
		                   created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(query),
		u.UserName,
		u.Email,
		u.FullName,
		string(u.Role),
		u.Active,
		now,
		now,
	)
	if err != nil {
		if dup := duplicateUser(err, u); dup != nil {
			return fmt.Errorf("create user: %w", dup)
		}
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now

	return nil
}

func (r *repository) update(ctx context.Context, u *User) error {
	now := r.timestamp()
	if now.Before(u.CreatedAt) {
		now = u.CreatedAt
	}

	query := `
		UPDATE users
		SET user_name = ?, email = ?, full_name = ?, role = ?, active = ?,
		    updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		u.UserName,
		u.Email,
		u.FullName,
		string(u.Role),
		u.Active,
		now,
		u.ID,
	)
	if err != nil {
		if dup := duplicateUser(err, u); dup != nil {
			return fmt.Errorf("update user: %w", dup)
		}
		return fmt.Errorf("update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update user: %w", NotFoundByID(u.ID))
	}

	u.UpdatedAt = now

	return nil
}

func (r *repository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(
		ctx,
		r.db.Rebind("DELETE FROM users WHERE id = ?"),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", NotFoundByID(id))
	}

	return nil
}

func (r *repository) CountByRole(ctx context.Context, role Role) (int64, error) {
	return r.count(ctx, "count users by role", "role = ?", string(role))
}

func (r *repository) CountByActive(
	ctx context.Context,
	active bool,
) (int64, error) {
	return r.count(ctx, "count users by active", "active = ?", active)
}

func (r *repository) findOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s`,
		userColumns, where)

	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}

func (r *repository) findMany(
	ctx context.Context,
	op, where, orderBy string,
	args ...any,
) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + orderBy

	users := []User{}
	if err := r.db.SelectContext(
		ctx,
		&users,
		r.db.Rebind(query),
		args...,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (r *repository) exists(
	ctx context.Context,
	op, where string,
	arg any,
) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM users WHERE " + where + ")"

	var exists bool
	if err := r.db.GetContext(
		ctx,
		&exists,
		r.db.Rebind(query),
		arg,
	); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *repository) count(
	ctx context.Context,
	op, where string,
	arg any,
) (int64, error) {
	query := "SELECT COUNT(*) FROM users WHERE " + where

	var n int64
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), arg); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// timestamp truncates to microseconds, the precision Postgres keeps.
func (r *repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// duplicateUser maps a unique index violation to the conflicting field of
// u, or returns nil when err is not such a violation.
func duplicateUser(err error, u *User) *DuplicateUserError {
	var detail string

	var pgErr *pgconn.PgError
	var sqliteErr *sqlite.Error
	switch {
	case errors.As(err, &pgErr):
		if pgErr.Code != "23505" {
			return nil
		}
		detail = pgErr.ConstraintName
	case errors.As(err, &sqliteErr):
		// Primary code in the low byte; the extended code is
		// SQLITE_CONSTRAINT_UNIQUE when extended codes are on.
		detail = sqliteErr.Error()
		if sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT ||
			!strings.Contains(detail, "UNIQUE") {
			return nil
		}
	default:
		return nil
	}

	if strings.Contains(detail, "user_name") {
		return &DuplicateUserError{Field: FieldUserName, Value: u.UserName}
	}
	return &DuplicateUserError{Field: FieldEmail, Value: u.Email}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
