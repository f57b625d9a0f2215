package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"tempchat/domain"
	cherrors "tempchat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const retentionKey = "meta:retention"

type MessageRepository struct {
	db        *badger.DB
	log       *slog.Logger
	feed      *ChangeFeed
	room      string
	retention time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, feed *ChangeFeed, room string, retention time.Duration) *MessageRepository {
	return &MessageRepository{
		db:        db,
		log:       log,
		feed:      feed,
		room:      room,
		retention: retention,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// messageDraft is what gets validated before anything touches the store.
// The body is checked after trimming so whitespace-only messages are
// rejected locally instead of wasting a write.
type messageDraft struct {
	Sender   string `validate:"required"`
	Receiver string `validate:"required"`
	Body     string `validate:"required"`
}

// diskMessage is the on-disk value. Field names follow the wire vocabulary
// of the message collection ("message", "timestamp").
type diskMessage struct {
	ID       string `json:"id"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Body     string `json:"message"`
	At       int64  `json:"timestamp"`
}

// StoreMessage persists a message in BadgerDB and publishes the matching
// insert change event. The key is formatted as
// "msg:{receiver}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order) within one receiver prefix.
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
//
// ID and timestamp are assigned here; whatever the caller set is ignored.
func (r *MessageRepository) StoreMessage(m domain.Message) (domain.Message, error) {
	draft := messageDraft{Sender: m.Sender, Receiver: m.Receiver, Body: strings.TrimSpace(m.Body)}
	if err := r.validate.Struct(draft); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cherrors.ErrInvalidMessage, err)
	}
	// The colon is the key separator; a receiver carrying one would land
	// inside another prefix and leak into that viewer's scans.
	if strings.ContainsAny(m.Receiver, ": ") {
		return domain.Message{}, fmt.Errorf("%w: receiver %q contains reserved characters", cherrors.ErrInvalidMessage, m.Receiver)
	}

	m.ID = uuid.New()
	m.At = r.now().UTC()

	bytes, err := json.Marshal(fromMessage(m))
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cherrors.ErrInvalidMessage, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(m), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}

	r.feed.Publish(domain.ChangeEvent{Operation: domain.OpInsert, Document: m})
	return m, nil
}

// VisibleMessages returns every live message the viewer may see, ascending
// by timestamp. Visibility is two prefix scans: the public room and the
// viewer's own direct messages. Entries older than the retention window are
// skipped even if the sweeper has not removed them yet, so expiry takes
// effect exactly at timestamp+window.
func (r *MessageRepository) VisibleMessages(viewer string) ([]domain.Message, error) {
	cutoff := r.now().UTC().Add(-r.retention)

	prefixes := []string{messagePrefix(r.room)}
	if viewer != r.room {
		prefixes = append(prefixes, messagePrefix(viewer))
	}

	var visible []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		for _, prefixStr := range prefixes {
			prefix := []byte(prefixStr)
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var value []byte
				err := it.Item().Value(func(val []byte) error {
					value = append([]byte(nil), val...)
					return nil
				})
				if err != nil {
					it.Close()
					return err
				}
				m, err := toMessage(value)
				if err != nil {
					it.Close()
					return err
				}
				// Re-check the addressing on the decoded message, not just the
				// key prefix, so a crafted receiver cannot piggyback on a scan.
				if m.At.After(cutoff) && domain.IsVisible(m, r.room, viewer) {
					visible = append(visible, m)
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}

	// Two sorted prefix runs, one global order.
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].At.Before(visible[j].At)
	})
	return visible, nil
}

// DeleteExpired removes every message whose age exceeds the retention window
// and publishes one delete change event per removed message. The sweeper
// calls it on an interval; running it twice over the same window is safe.
func (r *MessageRepository) DeleteExpired(now time.Time) ([]domain.Message, error) {
	cutoff := now.UTC().Add(-r.retention)
	prefix := []byte("msg:")

	var expired []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var value []byte
			err := it.Item().Value(func(val []byte) error {
				value = append([]byte(nil), val...)
				return nil
			})
			if err != nil {
				return err
			}
			m, err := toMessage(value)
			if err != nil {
				return err
			}
			if !m.At.After(cutoff) {
				expired = append(expired, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}
	if len(expired) == 0 {
		return nil, nil
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		for _, m := range expired {
			if err := txn.Delete(messageKey(m)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}

	for _, m := range expired {
		r.feed.Publish(domain.ChangeEvent{Operation: domain.OpDelete, Document: m})
	}
	r.log.Debug(fmt.Sprintf("Expired %d message(s)", len(expired)))
	return expired, nil
}

// EnsureRetentionPolicy records the active retention window under a meta key.
// Safe to call repeatedly and from concurrent sessions; a session configured
// with a different window wins the key and leaves a warning behind.
func (r *MessageRepository) EnsureRetentionPolicy() error {
	configured := strconv.Itoa(int(r.retention.Seconds()))
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(retentionKey))
		switch {
		case err == badger.ErrKeyNotFound:
			return txn.Set([]byte(retentionKey), []byte(configured))
		case err != nil:
			return err
		}
		var stored string
		if err = item.Value(func(val []byte) error {
			stored = string(val)
			return nil
		}); err != nil {
			return err
		}
		if stored != configured {
			r.log.Warn("Retention window differs from the stored policy, overwriting",
				"stored", stored, "configured", configured)
			return txn.Set([]byte(retentionKey), []byte(configured))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}
	return nil
}

func messagePrefix(receiver string) string {
	return fmt.Sprintf("msg:%s:", receiver)
}

func messageKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.Receiver, m.At.UnixNano(), m.ID))
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:       m.ID.String(),
		Sender:   m.Sender,
		Receiver: m.Receiver,
		Body:     m.Body,
		At:       m.At.UnixNano(),
	}
}

func toMessage(value []byte) (domain.Message, error) {
	var dm diskMessage
	if err := json.Unmarshal(value, &dm); err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:       parsedID,
		Sender:   dm.Sender,
		Receiver: dm.Receiver,
		Body:     dm.Body,
		At:       time.Unix(0, dm.At).UTC(),
	}, nil
}
