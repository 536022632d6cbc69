//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

type IUserRepository interface {
	CreateUser(handle, hashedPassword string) (string, error)
	GetUserByHandle(handle string) (User, error)
	SetAvailability(handle string, availability domain.Availability) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of a participant account.
type User struct {
	ID           string
	Handle       string
	PasswordHash string
	Roles        []string
	Availability domain.Availability
	CreatedAt    time.Time
}

// Participant converts the stored account into the identity the delivery
// path works with.
func (u User) Participant() domain.Participant {
	return domain.Participant{Handle: u.Handle, Availability: u.Availability}
}

func userKey(handle string) []byte {
	return []byte("user:" + handle)
}

// CreateUser persists a new account. New users start AVAILABLE; only the
// explicit availability toggle moves them to BUSY.
func (u *UserRepository) CreateUser(handle, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	user := User{
		ID:           newID,
		Handle:       handle,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		Availability: domain.Available,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := msgpack.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(handle)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

// GetUserByHandle retrieves an account and maps a missing key to
// ErrUnknownParticipant so the delivery path can fail fast.
func (u *UserRepository) GetUserByHandle(handle string) (User, error) {
	var user User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(handle))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &user)
		})
	})
	if err == badger.ErrKeyNotFound {
		return User{}, fmt.Errorf("%w: %s", errors.ErrUnknownParticipant, handle)
	}
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// SetAvailability flips the stored availability state in place.
func (u *UserRepository) SetAvailability(handle string, availability domain.Availability) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(handle))
		if err != nil {
			return err
		}

		var user User
		if err := item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &user)
		}); err != nil {
			return err
		}

		user.Availability = availability
		data, err := msgpack.Marshal(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(handle), data)
	})
	if err == badger.ErrKeyNotFound {
		return fmt.Errorf("%w: %s", errors.ErrUnknownParticipant, handle)
	}
	return err
}
