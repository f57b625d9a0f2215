package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"tempchat/contract"
	"tempchat/domain"
	cherrors "tempchat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) contract.IUserStore {
	return &UserRepository{db: db}
}

type diskUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
}

// RegisterUser claims a handle. Uniqueness is the get-before-set inside one
// transaction: a second registration of the same handle, from this session
// or any other, fails with ErrUserAlreadyExists and leaves the original
// record untouched.
func (u UserRepository) RegisterUser(username string) (domain.User, error) {
	user := domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(diskUser{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt.Unix()})
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte("user:" + username)
		if _, err = txn.Get(key); err == nil {
			return cherrors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err == cherrors.ErrUserAlreadyExists {
		return domain.User{}, err
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}
	return user, nil
}

// GetUser retrieves a registered participant by handle.
func (u UserRepository) GetUser(username string) (domain.User, error) {
	var du diskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &du)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, fmt.Errorf("%w: %s", cherrors.ErrUserNotFound, username)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", cherrors.ErrStoreUnavailable, err)
	}
	return domain.User{
		ID:        du.ID,
		Username:  du.Username,
		CreatedAt: time.Unix(du.CreatedAt, 0).UTC(),
	}, nil
}
