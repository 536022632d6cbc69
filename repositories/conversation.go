//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vmihailenco/msgpack/v5"
)

type IConversationRepository interface {
	FindOrCreate(a, b string) (domain.Conversation, error)
	Record(cmd domain.SendCommand) (domain.Message, error)
	RecordReply(original domain.SendCommand, content string, at time.Time) (domain.Message, error)
	History(a, b string, cursor *string) ([]domain.Message, *string, error)
}

// ConversationRepository owns the "at most one conversation per pair"
// invariant and the per-conversation message ledger, both persisted in
// BadgerDB.
//
// Creation and append are serialized per pair through a keyed lock table:
// two concurrent sends between the same two participants queue on the same
// mutex, so find-or-create can never produce two records and ledger
// positions can never collide. Different pairs touch disjoint keys and
// proceed in parallel.
type ConversationRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int

	mu        sync.Mutex
	pairLocks map[domain.PairKey]*sync.Mutex
}

func NewConversationRepository(db *badger.DB, log *slog.Logger, limitMessages *int) *ConversationRepository {
	return &ConversationRepository{
		db:            db,
		log:           log,
		limitMessages: limitMessages,
		pairLocks:     make(map[domain.PairKey]*sync.Mutex),
	}
}

// DiskConversation is the persisted shape of a conversation record.
type DiskConversation struct {
	Pair         string
	CreatedAt    int64
	LastPosition int64
}

// DiskMessage is the persisted shape of a ledger entry.
type DiskMessage struct {
	ID        string
	Pair      string
	Position  int64
	Sender    string
	Recipient string
	Content   string
	At        int64
}

func convKey(key domain.PairKey) []byte {
	return []byte("conv:" + string(key))
}

// messageKey formats ledger keys as "msg:{pair}:{position}" with the
// position zero-padded to 19 digits, so Badger's lexicographic key order
// is exactly the ledger order.
func messageKey(key domain.PairKey, position int64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d", key, position))
}

func messagePrefix(key domain.PairKey) []byte {
	return []byte(fmt.Sprintf("msg:%s:", key))
}

// lockPair acquires the creation/append mutex for a pair, creating it on
// first use. The table-level lock is held only for the map access.
func (r *ConversationRepository) lockPair(key domain.PairKey) *sync.Mutex {
	r.mu.Lock()
	l, ok := r.pairLocks[key]
	if !ok {
		l = &sync.Mutex{}
		r.pairLocks[key] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l
}

// FindOrCreate returns the unique conversation for the unordered pair
// {a, b}, creating it if this is the first contact between the two.
func (r *ConversationRepository) FindOrCreate(a, b string) (domain.Conversation, error) {
	key := domain.NewPairKey(a, b)
	l := r.lockPair(key)
	defer l.Unlock()
	return r.findOrCreateLocked(key)
}

func (r *ConversationRepository) findOrCreateLocked(key domain.PairKey) (domain.Conversation, error) {
	conv, err := r.getConversation(key)
	if err == nil {
		return conv, nil
	}
	if err != badger.ErrKeyNotFound {
		return domain.Conversation{}, err
	}

	created := DiskConversation{
		Pair:         string(key),
		CreatedAt:    time.Now().UTC().UnixNano(),
		LastPosition: 0,
	}
	data, err := msgpack.Marshal(created)
	if err != nil {
		return domain.Conversation{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(convKey(key)); err == nil {
			return errors.ErrConversationConflict
		}
		return txn.Set(convKey(key), data)
	})
	switch err {
	case nil:
		return toConversation(created), nil
	case errors.ErrConversationConflict, badger.ErrConflict:
		// Another writer won the creation race; reuse its record.
		r.log.Debug("conversation creation conflict, reusing winner", "pair", key)
		conv, err := r.getConversation(key)
		if err != nil {
			return domain.Conversation{}, err
		}
		return conv, nil
	default:
		return domain.Conversation{}, err
	}
}

func (r *ConversationRepository) getConversation(key domain.PairKey) (domain.Conversation, error) {
	var disk DiskConversation
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(convKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &disk)
		})
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(disk), nil
}

// Record is the single choke point every message goes through, live or
// synthetic. It validates the send, resolves the owning conversation and
// appends the message at the next ledger position, all under the pair lock
// and a single Badger transaction.
func (r *ConversationRepository) Record(cmd domain.SendCommand) (domain.Message, error) {
	if cmd.Sender == cmd.Recipient {
		return domain.Message{}, fmt.Errorf("%w: sender and recipient are the same", errors.ErrInvalidMessage)
	}
	if strings.TrimSpace(cmd.Content) == "" {
		return domain.Message{}, fmt.Errorf("%w: empty content", errors.ErrInvalidMessage)
	}

	key := domain.NewPairKey(cmd.Sender, cmd.Recipient)
	l := r.lockPair(key)
	defer l.Unlock()

	if _, err := r.findOrCreateLocked(key); err != nil {
		return domain.Message{}, err
	}

	at := cmd.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	message := domain.Message{
		ID:           uuid.New(),
		Conversation: key,
		Sender:       cmd.Sender,
		Recipient:    cmd.Recipient,
		Content:      cmd.Content,
		CreatedAt:    at,
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(convKey(key))
		if err != nil {
			return err
		}
		var disk DiskConversation
		if err := item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &disk)
		}); err != nil {
			return err
		}

		message.Position = disk.LastPosition + 1
		msgData, err := msgpack.Marshal(fromMessage(message))
		if err != nil {
			return err
		}
		if err := txn.Set(messageKey(key, message.Position), msgData); err != nil {
			return err
		}

		disk.LastPosition = message.Position
		convData, err := msgpack.Marshal(disk)
		if err != nil {
			return err
		}
		return txn.Set(convKey(key), convData)
	})
	if err != nil {
		return domain.Message{}, err
	}

	return message, nil
}

// RecordReply appends a synthetic reply spoken on behalf of the original
// recipient. The attribution swap lives here, in one place, instead of
// being a calling convention on Record.
func (r *ConversationRepository) RecordReply(original domain.SendCommand, content string, at time.Time) (domain.Message, error) {
	return r.Record(domain.SendCommand{
		Sender:    original.Recipient,
		Recipient: original.Sender,
		Content:   content,
		CreatedAt: at,
	})
}

// History returns the ordered message history between two participants
// using a prefix scan. Thanks to the padded position in the key, messages
// come back in ledger order without sorting. The cursor is the padded
// position of the last message seen; passing it resumes just after.
func (r *ConversationRepository) History(a, b string, cursor *string) ([]domain.Message, *string, error) {
	key := domain.NewPairKey(a, b)
	if _, err := r.getConversation(key); err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil, errors.ErrConversationNotFound
		}
		return nil, nil, err
	}

	var diskMessages []DiskMessage
	var lastKey string
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(key)
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}
		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitMessages != nil && len(diskMessages) == *r.limitMessages {
				r.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *r.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			var disk DiskMessage
			if err := item.Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &disk)
			}); err != nil {
				return err
			}
			diskMessages = append(diskMessages, disk)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(diskMessages))
	for _, disk := range diskMessages {
		message, err := toMessage(disk)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	if len(messages) == 0 {
		return messages, nil, nil
	}
	return messages, lo.ToPtr(lastKey), nil
}

func toConversation(disk DiskConversation) domain.Conversation {
	return domain.Conversation{
		Key:          domain.PairKey(disk.Pair),
		CreatedAt:    time.Unix(0, disk.CreatedAt).UTC(),
		LastPosition: disk.LastPosition,
	}
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:        message.ID.String(),
		Pair:      string(message.Conversation),
		Position:  message.Position,
		Sender:    message.Sender,
		Recipient: message.Recipient,
		Content:   message.Content,
		At:        message.CreatedAt.UnixNano(),
	}
}

func toMessage(disk DiskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:           parsedID,
		Conversation: domain.PairKey(disk.Pair),
		Position:     disk.Position,
		Sender:       disk.Sender,
		Recipient:    disk.Recipient,
		Content:      disk.Content,
		CreatedAt:    time.Unix(0, disk.At).UTC(),
	}, nil
}
