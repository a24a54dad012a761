// AngelaMos | 2026
// errors.go

package user

import (
	"fmt"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

const (
	FieldID       = "id"
	FieldUserName = "username"
	FieldEmail    = "email"
)

// UserNotFoundError reports that no user matches Field = Value.
type UserNotFoundError struct {
	Field string
	Value string
}

func NotFoundByID(id int64) *UserNotFoundError {
	return &UserNotFoundError{Field: FieldID, Value: fmt.Sprint(id)}
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found with %s: %s", e.Field, e.Value)
}

func (e *UserNotFoundError) Unwrap() error {
	return core.ErrNotFound
}

// DuplicateUserError reports a uniqueness conflict on Field.
type DuplicateUserError struct {
	Field string
	Value string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Field, e.Value)
}

func (e *DuplicateUserError) Unwrap() error {
	return core.ErrDuplicateKey
}
