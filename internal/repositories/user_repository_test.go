package repositories

import (
	"testing"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryLookups(t *testing.T) {
	ctx := t.Context()
	repo := NewPostgresUserRepository(openTestDB(t))
	ids := createUsers(t, repo, "alice", "bob")

	byEmail, err := repo.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, ids[1], byEmail.ID)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, ids[0], byName.ID)

	_, err = repo.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUserByFirebaseUID(ctx, "uid-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := t.Context()
	repo := NewPostgresUserRepository(openTestDB(t))
	createUsers(t, repo, "alice")

	err := repo.CreateUser(ctx, &models.User{Username: "alice2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = repo.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryLinksFirebaseUID(t *testing.T) {
	ctx := t.Context()
	repo := NewPostgresUserRepository(openTestDB(t))
	ids := createUsers(t, repo, "alice", "bob")

	user, err := repo.GetUserByID(ctx, ids[0])
	require.NoError(t, err)
	uid := "uid-1"
	user.FirebaseUID = &uid
	require.NoError(t, repo.UpdateUser(ctx, user))

	linked, err := repo.GetUserByFirebaseUID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, ids[0], linked.ID)
	assert.Equal(t, "alice", linked.Username)
}

func TestUserRepositoryBatchReads(t *testing.T) {
	ctx := t.Context()
	repo := NewPostgresUserRepository(openTestDB(t))
	ids := createUsers(t, repo, "alice", "bob", "carol", "dave")

	users, err := repo.GetUsersByIDs(ctx, []uint{ids[2], 999, ids[0]})
	require.NoError(t, err)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, names)

	none, err := repo.GetUsersByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	others, err := repo.ListUsersExcept(ctx, ids[1], 2)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, ids[0], others[0].ID)
	assert.Equal(t, ids[2], others[1].ID)
}
