package pricing

import (
	"encoding/json"
	"errors"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
)

// Store reads and writes the process-wide pricing config singleton.
// Every price calculation re-reads it; the engine's memo keys on the
// Version field so an update invalidates cached values immediately.
type Store struct {
	kv store.KV
}

func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) Load() (*models.PricingConfig, error) {
	raw, err := s.kv.Get(store.PricingKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cfg := models.DefaultPricingConfig()
			if err := s.save(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	var cfg models.PricingConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Update replaces the table and bumps the version under the config
// key lock so concurrent updates cannot share a version number.
func (s *Store) Update(cfg *models.PricingConfig) (*models.PricingConfig, error) {
	var out *models.PricingConfig
	err := s.kv.WithLock(store.PricingKey, func() error {
		current, err := s.Load()
		if err != nil {
			return err
		}
		cfg.Version = current.Version + 1
		if err := s.save(cfg); err != nil {
			return err
		}
		out = cfg
		return nil
	})
	return out, err
}

func (s *Store) save(cfg *models.PricingConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.kv.Set(store.PricingKey, raw)
}
