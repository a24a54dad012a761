// AngelaMos | 2026
// repository_mock_test.go

package user

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByUserName(ctx context.Context, userName string) (*User, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	args := m.Called(ctx, userName)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) FindPage(ctx context.Context, req PageRequest) ([]User, int64, error) {
	args := m.Called(ctx, req)
	return usersArg(args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) FindByActive(ctx context.Context, active bool) ([]User, error) {
	args := m.Called(ctx, active)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) FindByRole(ctx context.Context, role Role) ([]User, error) {
	args := m.Called(ctx, role)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) FindByActiveAndRole(ctx context.Context, active bool, role Role) ([]User, error) {
	args := m.Called(ctx, active, role)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) SearchByFullName(ctx context.Context, fragment string) ([]User, error) {
	args := m.Called(ctx, fragment)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) FindCreatedBetween(ctx context.Context, start, end time.Time) ([]User, error) {
	args := m.Called(ctx, start, end)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) FindCreatedAfter(ctx context.Context, since time.Time) ([]User, error) {
	args := m.Called(ctx, since)
	return usersArg(args, 0), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountByRole(ctx context.Context, role Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CountByActive(ctx context.Context, active bool) (int64, error) {
	args := m.Called(ctx, active)
	return args.Get(0).(int64), args.Error(1)
}

func usersArg(args mock.Arguments, i int) []User {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]User)
}
