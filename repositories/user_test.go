package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestUserRepository(t *testing.T) IUserRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db)
}

func TestUserRepository_Create_And_Get(t *testing.T) {
	req := require.New(t)
	repository := newTestUserRepository(t)

	id, err := repository.CreateUser("alice@example.com", "$argon2id$fake-hash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByHandle("alice@example.com")
	req.NoError(err)
	req.Equal("alice@example.com", user.Handle)
	req.Equal(domain.Available, user.Availability)
	req.Equal([]string{"user"}, user.Roles)
}

func TestUserRepository_Duplicate_Handle(t *testing.T) {
	req := require.New(t)
	repository := newTestUserRepository(t)

	_, err := repository.CreateUser("alice@example.com", "hash-1")
	req.NoError(err)

	_, err = repository.CreateUser("alice@example.com", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestUserRepository_Unknown_Handle(t *testing.T) {
	req := require.New(t)
	repository := newTestUserRepository(t)

	_, err := repository.GetUserByHandle("ghost@example.com")
	req.ErrorIs(err, errors.ErrUnknownParticipant)
}

func TestUserRepository_SetAvailability(t *testing.T) {
	req := require.New(t)
	repository := newTestUserRepository(t)

	_, err := repository.CreateUser("alice@example.com", "hash")
	req.NoError(err)

	req.NoError(repository.SetAvailability("alice@example.com", domain.Busy))

	user, err := repository.GetUserByHandle("alice@example.com")
	req.NoError(err)
	req.Equal(domain.Busy, user.Availability)
	req.False(user.Participant().Reachable())
}
