//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"pairchat/domain"
	"pairchat/errors"
)

type IUserRepository interface {
	Create(email, fullName, bio, profilePic, passwordHash string) (domain.User, error)
	GetByID(id string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	GetByIDs(ids []string) ([]domain.User, error)
	UpdateProfile(id, fullName, bio, profilePic string) (domain.User, error)
	SetRefreshToken(id, token string) error
}

// UserRepository persists users in BadgerDB.
// Primary records live under "user:{id}"; "useremail:{email}" maps the
// unique email to the id so duplicate signups are rejected inside one
// transaction.
type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// diskUser is the storage representation. Unlike domain.User it serializes
// the credential fields, which must never reach an API response.
type diskUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profile_pic"`
	PasswordHash string    `json:"password_hash"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
}

func fromUser(user domain.User) diskUser {
	return diskUser(user)
}

func toUser(disk diskUser) domain.User {
	return domain.User(disk)
}

func userKey(id string) []byte     { return []byte("user:" + id) }
func emailKey(email string) []byte { return []byte("useremail:" + email) }

func (r *UserRepository) Create(email, fullName, bio, profilePic, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		Bio:          bio,
		ProfilePic:   profilePic,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.Conflict("Email already exist !")
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(id string) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = readUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (domain.User, error) {
	var user domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return userNotFound(err)
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		user, err = readUser(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByIDs(ids []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			user, err := readUser(txn, id)
			if err != nil {
				if errors.Is(err, errors.KindNotFound) {
					continue // dangling index entry
				}
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdateProfile(id, fullName, bio, profilePic string) (domain.User, error) {
	var user domain.User
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		user, err = readUser(txn, id)
		if err != nil {
			return err
		}
		user.FullName = fullName
		user.Bio = bio
		if profilePic != "" {
			user.ProfilePic = profilePic
		}
		return writeUser(txn, user)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// SetRefreshToken rotates (or clears, with an empty token) the stored
// refresh credential. Refresh is only honored when the presented token
// matches this value, so rotation invalidates older tokens.
func (r *UserRepository) SetRefreshToken(id, token string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		user, err := readUser(txn, id)
		if err != nil {
			return err
		}
		user.RefreshToken = token
		return writeUser(txn, user)
	})
}

func readUser(txn *badger.Txn, id string) (domain.User, error) {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return domain.User{}, userNotFound(err)
	}
	var disk diskUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	}); err != nil {
		return domain.User{}, err
	}
	return toUser(disk), nil
}

func writeUser(txn *badger.Txn, user domain.User) error {
	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return err
	}
	return txn.Set(userKey(user.ID), data)
}

func userNotFound(err error) error {
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.NotFound("user not found")
	}
	return err
}
