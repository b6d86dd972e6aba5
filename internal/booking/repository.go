package booking

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
)

// Repository persists bookings as JSON values under "booking:<id>".
type Repository struct {
	kv store.KV
}

func NewRepository(kv store.KV) *Repository {
	return &Repository{kv: kv}
}

func (r *Repository) Get(id string) (*models.Booking, error) {
	raw, err := r.kv.Get(store.BookingPrefix + id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var b models.Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) Save(b *models.Booking) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.kv.Set(store.BookingPrefix+b.ID, raw)
}

func (r *Repository) Delete(id string) error {
	return r.kv.Delete(store.BookingPrefix + id)
}

func (r *Repository) List() ([]models.Booking, error) {
	raws, err := r.kv.GetByPrefix(store.BookingPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Booking, 0, len(raws))
	for _, raw := range raws {
		var b models.Booking
		if err := json.Unmarshal(raw, &b); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// NewID generates the opaque booking identifier.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// NewBookingCode generates the short human-facing code, e.g. SP-3F9A01BC.
func NewBookingCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return fmt.Sprintf("SP-%s", strings.ToUpper(hex.EncodeToString(buf)))
}
