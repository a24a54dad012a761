// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

const tracerName = "github.com/tasktrack/tasktrack-api/internal/user"

// Service owns the user lifecycle rules: uniqueness of username and email,
// soft delete and reactivation, and explicit hard delete. The uniqueness
// checks are a fast path; the storage unique indexes are authoritative.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("component", "user"),
	}
}

// Create rejects a candidate whose username, then email, is taken.
// Storage assigns the id and timestamps; new users are always active.
func (s *Service) Create(ctx context.Context, candidate User) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Create",
		attribute.String("user.username", candidate.UserName),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.InfoContext(ctx, "creating user", "username", candidate.UserName)

	if err := s.ensureUserNameFree(ctx, candidate.UserName); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, candidate.Email); err != nil {
		return nil, err
	}

	created := candidate
	created.ID = 0
	created.Active = true

	if err := s.repo.Save(ctx, &created); err != nil {
		s.logConflict(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", created.ID,
		"username", created.UserName,
	)

	return &created, nil
}

// GetByID returns the user whether active or not.
func (s *Service) GetByID(ctx context.Context, id int64) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.GetByID",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "fetching user", "user_id", id)

	return s.findByID(ctx, id)
}

func (s *Service) GetByUserName(
	ctx context.Context,
	userName string,
) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.GetByUserName")
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "fetching user", "username", userName)

	u, err = s.repo.FindByUserName(ctx, userName)
	if errors.Is(err, core.ErrNotFound) {
		return nil, &UserNotFoundError{Field: FieldUserName, Value: userName}
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.GetByEmail")
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "fetching user", "email", email)

	u, err = s.repo.FindByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return nil, &UserNotFoundError{Field: FieldEmail, Value: email}
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ListAll returns active and inactive users alike.
func (s *Service) ListAll(ctx context.Context) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.ListAll")
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "listing all users")

	return s.repo.FindAll(ctx)
}

// ListPage expects req already bounded by the caller.
func (s *Service) ListPage(
	ctx context.Context,
	req PageRequest,
) (page Page, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.ListPage",
		attribute.Int("page.number", req.Page),
		attribute.Int("page.size", req.Size),
		attribute.String("page.sort", req.Sort.String()),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "listing users",
		"page", req.Page,
		"size", req.Size,
		"sort", req.Sort.String(),
	)

	users, total, err := s.repo.FindPage(ctx, req)
	if err != nil {
		return Page{}, err
	}

	return NewPage(users, req, total), nil
}

func (s *Service) ListActive(ctx context.Context) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.ListActive")
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "listing active users")

	return s.repo.FindByActive(ctx, true)
}

func (s *Service) ListByRole(
	ctx context.Context,
	role Role,
) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.ListByRole",
		attribute.String("user.role", role.String()),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "listing users by role", "role", role)

	return s.repo.FindByRole(ctx, role)
}

func (s *Service) ListActiveByRole(
	ctx context.Context,
	role Role,
) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.ListActiveByRole",
		attribute.String("user.role", role.String()),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.DebugContext(ctx, "listing active users by role", "role", role)

	return s.repo.FindByActiveAndRole(ctx, true, role)
}

type SearchFilter struct {
	Name          string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Search runs a name search or a creation-date range query. The two kinds
// of filter cannot be combined.
func (s *Service) Search(
	ctx context.Context,
	f SearchFilter,
) (users []User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Search")
	defer func() { core.EndSpan(span, err) }()

	hasRange := f.CreatedAfter != nil || f.CreatedBefore != nil

	switch {
	case f.Name != "" && hasRange:
		return nil, fmt.Errorf(
			"search: name and creation date filters cannot be combined: %w",
			core.ErrInvalidInput,
		)
	case f.Name != "":
		return s.repo.SearchByFullName(ctx, f.Name)
	case f.CreatedAfter != nil && f.CreatedBefore != nil:
		if f.CreatedBefore.Before(*f.CreatedAfter) {
			return nil, fmt.Errorf(
				"search: createdBefore precedes createdAfter: %w",
				core.ErrInvalidInput,
			)
		}
		return s.repo.FindCreatedBetween(ctx, *f.CreatedAfter, *f.CreatedBefore)
	case f.CreatedAfter != nil:
		return s.repo.FindCreatedAfter(ctx, *f.CreatedAfter)
	case f.CreatedBefore != nil:
		return s.repo.FindCreatedBetween(ctx, time.Unix(0, 0), *f.CreatedBefore)
	default:
		return nil, fmt.Errorf(
			"search: at least one filter is required: %w",
			core.ErrInvalidInput,
		)
	}
}

// Update overwrites every mutable field of user id with values. Username
// and email uniqueness is re-checked only for the fields that change.
func (s *Service) Update(
	ctx context.Context,
	id int64,
	values User,
) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Update",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.InfoContext(ctx, "updating user", "user_id", id)

	existing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.UserName != values.UserName {
		if err := s.ensureUserNameFree(ctx, values.UserName); err != nil {
			return nil, err
		}
	}

	if existing.Email != values.Email {
		if err := s.ensureEmailFree(ctx, values.Email); err != nil {
			return nil, err
		}
	}

	existing.UserName = values.UserName
	existing.Email = values.Email
	existing.FullName = values.FullName
	existing.Role = values.Role
	existing.Active = values.Active

	if err := s.repo.Save(ctx, existing); err != nil {
		s.logConflict(ctx, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", id)

	return existing, nil
}

// SoftDelete deactivates user id. Deactivating an inactive user succeeds.
func (s *Service) SoftDelete(ctx context.Context, id int64) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.SoftDelete",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.InfoContext(ctx, "deactivating user", "user_id", id)

	return s.setActive(ctx, id, false)
}

// Reactivate activates user id. Reactivating an active user succeeds.
func (s *Service) Reactivate(ctx context.Context, id int64) (u *User, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Reactivate",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.InfoContext(ctx, "reactivating user", "user_id", id)

	return s.setActive(ctx, id, true)
}

// HardDelete removes user id permanently. There is no undo.
func (s *Service) HardDelete(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.HardDelete",
		attribute.Int64("user.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	s.logger.WarnContext(ctx, "hard deleting user", "user_id", id)

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return NotFoundByID(id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.logger.WarnContext(ctx, "user permanently deleted", "user_id", id)

	return nil
}

func (s *Service) IsUserNameAvailable(
	ctx context.Context,
	userName string,
) (bool, error) {
	exists, err := s.repo.ExistsByUserName(ctx, userName)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *Service) IsEmailAvailable(
	ctx context.Context,
	email string,
) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *Service) CountByRole(ctx context.Context, role Role) (int64, error) {
	return s.repo.CountByRole(ctx, role)
}

func (s *Service) CountActiveUsers(ctx context.Context) (int64, error) {
	return s.repo.CountByActive(ctx, true)
}

type Stats struct {
	Active   int64
	Inactive int64
	ByRole   map[Role]int64
}

func (s *Service) Stats(ctx context.Context) (stats *Stats, err error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.Stats")
	defer func() { core.EndSpan(span, err) }()

	active, err := s.CountActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	inactive, err := s.repo.CountByActive(ctx, false)
	if err != nil {
		return nil, err
	}

	byRole := make(map[Role]int64, len(Roles))
	for _, role := range Roles {
		n, err := s.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		byRole[role] = n
	}

	return &Stats{
		Active:   active,
		Inactive: inactive,
		ByRole:   byRole,
	}, nil
}

func (s *Service) findByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, NotFoundByID(id)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) setActive(
	ctx context.Context,
	id int64,
	active bool,
) (*User, error) {
	u, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Active = active

	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user active status saved",
		"user_id", id,
		"active", active,
	)

	return u, nil
}

func (s *Service) ensureUserNameFree(ctx context.Context, userName string) error {
	exists, err := s.repo.ExistsByUserName(ctx, userName)
	if err != nil {
		return err
	}
	if exists {
		s.logger.WarnContext(ctx, "username already exists", "username", userName)
		return &DuplicateUserError{Field: FieldUserName, Value: userName}
	}
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		s.logger.WarnContext(ctx, "email already exists", "email", email)
		return &DuplicateUserError{Field: FieldEmail, Value: email}
	}
	return nil
}

func (s *Service) logConflict(ctx context.Context, err error) {
	var dup *DuplicateUserError
	if errors.As(err, &dup) {
		s.logger.WarnContext(ctx, "unique index rejected save",
			"field", dup.Field,
			"value", dup.Value,
		)
	}
}
