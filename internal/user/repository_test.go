// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack-api/internal/config"
	"github.com/tasktrack/tasktrack-api/internal/core"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// stepClock returns testEpoch plus one minute per call.
type stepClock struct {
	mu sync.Mutex
	n  int
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := testEpoch.Add(time.Duration(c.n) * time.Minute)
	c.n++
	return t
}

func newTestDatabase(t *testing.T) *core.Database {
	t.Helper()

	ctx := context.Background()
	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "users.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	return db
}

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	clock := &stepClock{}
	return NewRepository(newTestDatabase(t).DB, WithClock(clock.Now))
}

func seedUser(t *testing.T, repo Repository, userName string, role Role) *User {
	t.Helper()
	u := &User{
		UserName: userName,
		Email:    userName + "@x.com",
		FullName: "User " + userName,
		Role:     role,
		Active:   true,
	}
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

func TestRepositoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	u := &User{
		UserName: "alice",
		Email:    "alice@x.com",
		FullName: "Alice A",
		Role:     RoleDeveloper,
		Active:   true,
	}
	require.NoError(t, repo.Save(ctx, u))

	assert.Positive(t, u.ID)
	assert.True(t, u.CreatedAt.Equal(testEpoch))
	assert.True(t, u.UpdatedAt.Equal(u.CreatedAt))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.UserName)
	assert.Equal(t, RoleDeveloper, byID.Role)
	assert.True(t, byID.Active)
	assert.True(t, byID.CreatedAt.Equal(u.CreatedAt))

	byName, err := repo.FindByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestRepositoryMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.FindByUserName(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = repo.Save(ctx, &User{
		ID:       999,
		UserName: "ghost",
		Email:    "ghost@x.com",
		FullName: "Ghost",
		Role:     RoleTester,
	})
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = repo.DeleteByID(ctx, 999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryExists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	u := seedUser(t, repo, "alice", RoleDeveloper)

	exists, err := repo.ExistsByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByID(ctx, u.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUserName(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	seedUser(t, repo, "alice", RoleDeveloper)
	bob := seedUser(t, repo, "bob", RoleTester)

	t.Run("insert duplicate username", func(t *testing.T) {
		err := repo.Save(ctx, &User{
			UserName: "alice",
			Email:    "other@x.com",
			FullName: "Other",
			Role:     RoleTester,
			Active:   true,
		})

		var dup *DuplicateUserError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, FieldUserName, dup.Field)
		assert.Equal(t, "alice", dup.Value)
	})

	t.Run("insert duplicate email", func(t *testing.T) {
		err := repo.Save(ctx, &User{
			UserName: "carol",
			Email:    "alice@x.com",
			FullName: "Carol",
			Role:     RoleTester,
			Active:   true,
		})

		var dup *DuplicateUserError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, FieldEmail, dup.Field)
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	t.Run("update into taken username", func(t *testing.T) {
		renamed := *bob
		renamed.UserName = "alice"

		err := repo.Save(ctx, &renamed)

		var dup *DuplicateUserError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, FieldUserName, dup.Field)
	})

	t.Run("inactive users still hold their names", func(t *testing.T) {
		inactive := *bob
		inactive.Active = false
		require.NoError(t, repo.Save(ctx, &inactive))

		err := repo.Save(ctx, &User{
			UserName: "bob",
			Email:    "bob2@x.com",
			FullName: "Bob Two",
			Role:     RoleTester,
			Active:   true,
		})
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
	})
}

func TestRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	u := seedUser(t, repo, "alice", RoleDeveloper)
	createdAt := u.CreatedAt

	u.Email = "alice@new.com"
	u.FullName = "Alice Anders"
	u.Role = RoleProjectManager
	u.Active = false
	require.NoError(t, repo.Save(ctx, u))

	assert.True(t, u.UpdatedAt.After(createdAt))

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.com", got.Email)
	assert.Equal(t, "Alice Anders", got.FullName)
	assert.Equal(t, RoleProjectManager, got.Role)
	assert.False(t, got.Active)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.True(t, got.UpdatedAt.Equal(u.UpdatedAt))
}

func TestRepositoryUpdateNeverPrecedesCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	insertRepo := NewRepository(db.DB, WithClock(func() time.Time { return testEpoch }))
	u := seedUser(t, insertRepo, "alice", RoleDeveloper)

	skewed := NewRepository(db.DB, WithClock(func() time.Time {
		return testEpoch.Add(-time.Hour)
	}))
	require.NoError(t, skewed.Save(ctx, u))

	assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	u := seedUser(t, repo, "alice", RoleDeveloper)

	require.NoError(t, repo.DeleteByID(ctx, u.ID))

	_, err := repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// The name is free again after a hard delete.
	seedUser(t, repo, "alice", RoleDeveloper)
}

func TestRepositoryFindPage(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, name := range []string{"dave", "alice", "carol", "bob", "erin"} {
		seedUser(t, repo, name, RoleDeveloper)
	}

	t.Run("default order", func(t *testing.T) {
		users, total, err := repo.FindPage(ctx, PageRequest{
			Page: 0,
			Size: 2,
			Sort: Sort{Field: DefaultSortField},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, users, 2)
		assert.Equal(t, "dave", users[0].UserName)
		assert.Equal(t, "alice", users[1].UserName)
	})

	t.Run("sorted by username descending", func(t *testing.T) {
		users, _, err := repo.FindPage(ctx, PageRequest{
			Page: 1,
			Size: 2,
			Sort: Sort{Field: "userName", Desc: true},
		})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "carol", users[0].UserName)
		assert.Equal(t, "bob", users[1].UserName)
	})

	t.Run("past the end", func(t *testing.T) {
		users, total, err := repo.FindPage(ctx, PageRequest{
			Page: 10,
			Size: 2,
			Sort: Sort{Field: DefaultSortField},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Empty(t, users)
		assert.NotNil(t, users)
	})
}

func TestRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	alice := seedUser(t, repo, "alice", RoleDeveloper)
	seedUser(t, repo, "bob", RoleTester)
	seedUser(t, repo, "carol", RoleDeveloper)

	alice.Active = false
	require.NoError(t, repo.Save(ctx, alice))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := repo.FindByActive(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	devs, err := repo.FindByRole(ctx, RoleDeveloper)
	require.NoError(t, err)
	assert.Len(t, devs, 2)

	activeDevs, err := repo.FindByActiveAndRole(ctx, true, RoleDeveloper)
	require.NoError(t, err)
	require.Len(t, activeDevs, 1)
	assert.Equal(t, "carol", activeDevs[0].UserName)

	none, err := repo.FindByRole(ctx, RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := repo.CountByRole(ctx, RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountByActive(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepositorySearchByFullName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	seedUser(t, repo, "alice", RoleDeveloper)
	seedUser(t, repo, "malik", RoleTester)
	seedUser(t, repo, "bob", RoleTester)
	odd := &User{
		UserName: "pct",
		Email:    "pct@x.com",
		FullName: "100% Real",
		Role:     RoleTester,
		Active:   true,
	}
	require.NoError(t, repo.Save(ctx, odd))

	users, err := repo.SearchByFullName(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "User alice", users[0].FullName)
	assert.Equal(t, "User malik", users[1].FullName)

	users, err = repo.SearchByFullName(ctx, "%")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "pct", users[0].UserName)
}

func TestRepositoryCreatedRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	// The step clock stamps these one minute apart from testEpoch.
	a := seedUser(t, repo, "alice", RoleDeveloper)
	b := seedUser(t, repo, "bob", RoleDeveloper)
	c := seedUser(t, repo, "carol", RoleDeveloper)

	between, err := repo.FindCreatedBetween(ctx, a.CreatedAt, b.CreatedAt)
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, a.ID, between[0].ID)
	assert.Equal(t, b.ID, between[1].ID)

	after, err := repo.FindCreatedAfter(ctx, b.CreatedAt)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, c.ID, after[0].ID)

	local := time.FixedZone("UTC+2", 2*60*60)
	after, err = repo.FindCreatedAfter(ctx, a.CreatedAt.In(local))
	require.NoError(t, err)
	assert.Len(t, after, 2)
}
