package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	options := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	// When a user signs up
	created, err := repo.Create("alice@example.com", "Alice", "hi there", "", "hash")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.False(created.CreatedAt.IsZero())

	// Then both lookups return the same record
	byID, err := repo.GetByID(created.ID)
	req.NoError(err)
	req.Equal(created, byID)

	byEmail, err := repo.GetByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created, byEmail)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.Create("alice@example.com", "Alice", "", "", "hash")
	req.NoError(err)

	// When the same email signs up again
	_, err = repo.Create("alice@example.com", "Imposter", "", "", "other")

	// Then the second signup is rejected as a conflict
	req.Error(err)
	req.True(errors.Is(err, errors.KindConflict))
}

func TestUserRepository_GetMissingUser(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetByID("nope")
	req.True(errors.Is(err, errors.KindNotFound))

	_, err = repo.GetByEmail("nobody@example.com")
	req.True(errors.Is(err, errors.KindNotFound))
}

func TestUserRepository_GetByIDsSkipsMissing(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	alice, err := repo.Create("alice@example.com", "Alice", "", "", "hash")
	req.NoError(err)
	bob, err := repo.Create("bob@example.com", "Bob", "", "", "hash")
	req.NoError(err)

	users, err := repo.GetByIDs([]string{alice.ID, "ghost", bob.ID})
	req.NoError(err)
	req.Len(users, 2)
	req.Equal(alice.ID, users[0].ID)
	req.Equal(bob.ID, users[1].ID)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	created, err := repo.Create("alice@example.com", "Alice", "old bio", "http://img/old.png", "hash")
	req.NoError(err)

	// When the profile changes without a new picture
	updated, err := repo.UpdateProfile(created.ID, "Alice B.", "new bio", "")
	req.NoError(err)

	// Then the previous picture is kept
	req.Equal("Alice B.", updated.FullName)
	req.Equal("new bio", updated.Bio)
	req.Equal("http://img/old.png", updated.ProfilePic)

	// When a new picture is provided it replaces the old one
	updated, err = repo.UpdateProfile(created.ID, "Alice B.", "new bio", "http://img/new.png")
	req.NoError(err)
	req.Equal("http://img/new.png", updated.ProfilePic)
}

func TestUserRepository_RefreshTokenRotation(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(openTestDB(t))

	created, err := repo.Create("alice@example.com", "Alice", "", "", "hash")
	req.NoError(err)

	req.NoError(repo.SetRefreshToken(created.ID, "token-1"))
	stored, err := repo.GetByID(created.ID)
	req.NoError(err)
	req.Equal("token-1", stored.RefreshToken)

	// Clearing with an empty token logs the user out everywhere
	req.NoError(repo.SetRefreshToken(created.ID, ""))
	stored, err = repo.GetByID(created.ID)
	req.NoError(err)
	req.Empty(stored.RefreshToken)

	req.True(errors.Is(repo.SetRefreshToken("ghost", "x"), errors.KindNotFound))
}
