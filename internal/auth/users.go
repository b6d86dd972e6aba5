package auth

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository persists operator accounts under "user:<id>".
type UserRepository struct {
	kv store.KV
}

func NewUserRepository(kv store.KV) *UserRepository {
	return &UserRepository{kv: kv}
}

func (r *UserRepository) Get(id string) (*models.User, error) {
	raw, err := r.kv.Get(store.UserPrefix + id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	users, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *UserRepository) List() ([]models.User, error) {
	raws, err := r.kv.GetByPrefix(store.UserPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(raws))
	for _, raw := range raws {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) Save(u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return r.kv.Set(store.UserPrefix+u.ID, raw)
}

func (r *UserRepository) Delete(id string) error {
	return r.kv.Delete(store.UserPrefix + id)
}

// NewUserID generates an opaque account id.
func NewUserID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// HashPassword wraps bcrypt with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EnsureAdmin bootstraps the initial admin account from config when no
// user with that username exists yet.
func (r *UserRepository) EnsureAdmin(username, password string) {
	if username == "" || password == "" {
		return
	}
	if _, err := r.GetByUsername(username); err == nil {
		return
	}
	hash, err := HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash bootstrap admin password: %v", err)
		return
	}
	u := &models.User{
		ID:           NewUserID(),
		Username:     username,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := r.Save(u); err != nil {
		log.Printf("Failed to create bootstrap admin: %v", err)
	}
}
