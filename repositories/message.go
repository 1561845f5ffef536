//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"pairchat/domain"
	"pairchat/errors"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	ListBetween(userA, userB string) ([]domain.Message, error)
	MarkConversationRead(sender, receiver string) (int, error)
	MarkRead(id uuid.UUID) error
	CountUnread(sender, receiver string) (int, error)
	Counterparts(userID string) ([]string, error)
}

// MessageRepository persists messages in BadgerDB.
// The primary key is "msg:{pairKey}:{timestamp_padded}:{uuid}" so that:
//  1. A forward prefix scan over one pair yields chronological order
//     (19-digit zero padding keeps lexicographic and time order aligned).
//  2. The UUID disambiguates two messages landing on the same nanosecond.
//
// Two secondary indexes are maintained in the same transaction:
// "msgid:{uuid}" -> primary key, for single-message lookups, and
// "contact:{user}:{counterpart}", an empty marker used to aggregate the
// distinct conversation counterparts of a user.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// pairKey is direction-independent: both (a,b) and (b,a) map to the same
// conversation prefix.
func pairKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func messageKey(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		pairKey(message.Sender, message.Receiver),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte("msgid:" + id.String())
}

func contactKey(userID, counterpartID string) []byte {
	return []byte("contact:" + userID + ":" + counterpartID)
}

func (r *MessageRepository) Store(message domain.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	key := messageKey(message)
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(messageIDKey(message.ID), key); err != nil {
			return err
		}
		if err := txn.Set(contactKey(message.Sender, message.Receiver), nil); err != nil {
			return err
		}
		return txn.Set(contactKey(message.Receiver, message.Sender), nil)
	})
}

// ListBetween returns the full history of a pair in ascending creation order.
func (r *MessageRepository) ListBetween(userA, userB string) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := []byte("msg:" + pairKey(userA, userB) + ":")
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			}); err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead flips the read flag on every unread message from
// sender to receiver and reports how many records changed. This is the
// bulk read-receipt side effect of opening a conversation.
func (r *MessageRepository) MarkConversationRead(sender, receiver string) (int, error) {
	updated := 0
	prefix := []byte("msg:" + pairKey(sender, receiver) + ":")
	err := r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var message domain.Message
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			}); err != nil {
				return err
			}
			if message.Sender != sender || message.IsRead {
				continue
			}
			message.IsRead = true
			data, err := json.Marshal(message)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), data); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		r.log.Debug("Marked conversation read", "sender", sender, "receiver", receiver, "count", updated)
	}
	return updated, nil
}

// MarkRead flips the read flag of one message, resolved via the id index.
func (r *MessageRepository) MarkRead(id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(id))
		if err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.NotFound("Message not found")
			}
			return err
		}
		var key []byte
		if err := item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}

		record, err := txn.Get(key)
		if err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.NotFound("Message not found")
			}
			return err
		}
		var message domain.Message
		if err := record.Value(func(val []byte) error {
			return json.Unmarshal(val, &message)
		}); err != nil {
			return err
		}
		if message.IsRead {
			return nil
		}
		message.IsRead = true
		data, err := json.Marshal(message)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// CountUnread counts messages from sender to receiver still flagged unread.
func (r *MessageRepository) CountUnread(sender, receiver string) (int, error) {
	count := 0
	prefix := []byte("msg:" + pairKey(sender, receiver) + ":")
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var message domain.Message
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &message)
			}); err != nil {
				return err
			}
			if message.Sender == sender && !message.IsRead {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Counterparts returns the distinct user ids that exchanged at least one
// message with userID, via the contact marker index.
func (r *MessageRepository) Counterparts(userID string) ([]string, error) {
	var ids []string
	prefix := []byte("contact:" + userID + ":")
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
