// Package store implements the opaque key-value contract the core
// depends on: get, set, delete and prefix scan. Values are JSON blobs;
// the core never assumes any relational capability beyond the scan.
package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("store: key not found")

// Namespace prefixes. All keys are "<prefix><identifier>".
const (
	BookingPrefix  = "booking:"
	DiscountPrefix = "discount:"
	UserPrefix     = "user:"
	PricingKey     = "pricing:config"
	SettingsKey    = "settings:general"
)

type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	GetByPrefix(prefix string) ([][]byte, error)

	// WithLock runs fn while holding the mutex for key, serializing
	// read-modify-write cycles on the same entity.
	WithLock(key string, fn func() error) error
}

// Record is the single table backing the KV contract.
type Record struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (Record) TableName() string { return "kv_records" }

type GormKV struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db, locks: make(map[string]*sync.Mutex)}
}

func (s *GormKV) Get(key string) ([]byte, error) {
	var rec Record
	if err := s.db.First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.Value, nil
}

func (s *GormKV) Set(key string, value []byte) error {
	rec := Record{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&rec).Error
}

func (s *GormKV) Delete(key string) error {
	return s.db.Delete(&Record{}, "key = ?", key).Error
}

func (s *GormKV) GetByPrefix(prefix string) ([][]byte, error) {
	var recs []Record
	pattern := strings.ReplaceAll(strings.ReplaceAll(prefix, "%", `\%`), "_", `\_`) + "%"
	if err := s.db.Where("key LIKE ? ESCAPE '\\'", pattern).Order("key").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value)
	}
	return out, nil
}

func (s *GormKV) WithLock(key string, fn func() error) error {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}
