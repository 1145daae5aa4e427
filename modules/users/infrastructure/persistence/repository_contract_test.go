package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rai/user-records-go/modules/users/domain"
)

// runRepositoryContract exercises the behavior every UserRepository backend
// must share. newRepo is called once per subtest.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.UserRepository) {
	t.Helper()

	profile := func(first string, emails ...domain.Email) domain.Profile {
		return domain.Profile{
			Name:   domain.NewName(first, "Doe"),
			DOB:    "1990-01-01",
			Emails: emails,
		}
	}

	t.Run("create then get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		before := time.Now().Add(-time.Minute)
		id, err := repo.CreateUser(ctx, profile("John", "b@example.com", "a@example.com"))
		require.NoError(t, err)
		require.False(t, id.IsZero())

		user, err := repo.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID())
		assert.Equal(t, "John", user.Name().FirstName())
		assert.Equal(t, "Doe", user.Name().LastName())
		assert.Equal(t, domain.DateOfBirth("1990-01-01"), user.DOB())
		assert.Equal(t, []domain.Email{"a@example.com", "b@example.com"}, user.Emails())
		assert.True(t, user.UpdatedAt().After(before))
	})

	t.Run("create generates distinct ids", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id1, err := repo.CreateUser(ctx, profile("John", "a@example.com"))
		require.NoError(t, err)
		id2, err := repo.CreateUser(ctx, profile("Jane", "a@example.com"))
		require.NoError(t, err)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("get unknown user", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetUser(context.Background(), domain.NewUserID())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("update replaces scalars and adds emails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id, err := repo.CreateUser(ctx, profile("John", "a@example.com"))
		require.NoError(t, err)
		created, err := repo.GetUser(ctx, id)
		require.NoError(t, err)

		updated := profile("Johnny", "c@example.com")
		updated.DOB = "1991-02-03"
		require.NoError(t, repo.UpdateUser(ctx, id, updated))

		user, err := repo.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Johnny", user.Name().FirstName())
		assert.Equal(t, domain.DateOfBirth("1991-02-03"), user.DOB())
		assert.Equal(t, []domain.Email{"a@example.com", "c@example.com"}, user.Emails())
		assert.False(t, user.UpdatedAt().Before(created.UpdatedAt()))
	})

	t.Run("update with no new emails keeps existing ones", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id, err := repo.CreateUser(ctx, profile("John", "a@example.com", "b@example.com"))
		require.NoError(t, err)
		require.NoError(t, repo.UpdateUser(ctx, id, profile("Jim")))

		user, err := repo.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Jim", user.Name().FirstName())
		assert.Equal(t, []domain.Email{"a@example.com", "b@example.com"}, user.Emails())
	})

	t.Run("update unknown user", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.UpdateUser(context.Background(), domain.NewUserID(), profile("John"))
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("delete removes user and emails", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id, err := repo.CreateUser(ctx, profile("John", "a@example.com", "b@example.com"))
		require.NoError(t, err)
		other, err := repo.CreateUser(ctx, profile("Jane", "a@example.com"))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteUser(ctx, id))

		_, err = repo.GetUser(ctx, id)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		remaining, err := repo.GetUser(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, []domain.Email{"a@example.com"}, remaining.Emails())
	})
}
