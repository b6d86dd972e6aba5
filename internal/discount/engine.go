// Package discount validates and applies promotional codes.
package discount

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
)

var (
	ErrNotFound  = errors.New("discount code not found")
	ErrInactive  = errors.New("discount code is inactive")
	ErrExpired   = errors.New("discount code has expired")
	ErrExhausted = errors.New("discount code has no usages left")
	ErrInvalid   = errors.New("invalid discount code definition")
)

type Engine struct {
	kv  store.KV
	clk clock.Clock
}

func NewEngine(kv store.KV, clk clock.Clock) *Engine {
	return &Engine{kv: kv, clk: clk}
}

// key normalizes the case-insensitive code into its storage key.
func key(code string) string {
	return store.DiscountPrefix + strings.ToLower(strings.TrimSpace(code))
}

func (e *Engine) Get(code string) (*models.DiscountCode, error) {
	raw, err := e.kv.Get(key(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var dc models.DiscountCode
	if err := json.Unmarshal(raw, &dc); err != nil {
		return nil, err
	}
	return &dc, nil
}

func (e *Engine) List() ([]models.DiscountCode, error) {
	raws, err := e.kv.GetByPrefix(store.DiscountPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.DiscountCode, 0, len(raws))
	for _, raw := range raws {
		var dc models.DiscountCode
		if err := json.Unmarshal(raw, &dc); err != nil {
			continue
		}
		out = append(out, dc)
	}
	return out, nil
}

func (e *Engine) Save(dc *models.DiscountCode) error {
	if err := validate(dc); err != nil {
		return err
	}
	if dc.CreatedAt.IsZero() {
		dc.CreatedAt = e.clk.Now()
	}
	raw, err := json.Marshal(dc)
	if err != nil {
		return err
	}
	return e.kv.Set(key(dc.Code), raw)
}

func (e *Engine) Delete(code string) error {
	if _, err := e.Get(code); err != nil {
		return err
	}
	return e.kv.Delete(key(code))
}

// Apply redeems a code against a price. The whole check-and-increment
// runs under the code's key lock so two concurrent redemptions of a
// nearly exhausted code can never both succeed.
func (e *Engine) Apply(code string, price float64) (float64, error) {
	var newPrice float64
	err := e.kv.WithLock(key(code), func() error {
		dc, err := e.Get(code)
		if err != nil {
			return err
		}
		if !dc.IsActive {
			return ErrInactive
		}
		if dc.ExpiryDate != nil && *dc.ExpiryDate != "" {
			expiry, err := models.ParseDate(*dc.ExpiryDate)
			if err == nil && clock.Midnight(e.clk.Now()).After(expiry) {
				return ErrExpired
			}
		}
		if dc.MaxUsages != nil && dc.UsageCount >= *dc.MaxUsages {
			return ErrExhausted
		}

		switch dc.DiscountType {
		case models.DiscountPercentage:
			newPrice = price * (1 - dc.DiscountValue/100)
		case models.DiscountFixed:
			newPrice = price - dc.DiscountValue
		default:
			return ErrInvalid
		}
		if newPrice < 0 {
			newPrice = 0
		}

		dc.UsageCount++
		now := e.clk.Now()
		dc.LastUsedAt = &now

		raw, err := json.Marshal(dc)
		if err != nil {
			return err
		}
		return e.kv.Set(key(code), raw)
	})
	return newPrice, err
}

func validate(dc *models.DiscountCode) error {
	if strings.TrimSpace(dc.Code) == "" {
		return fmt.Errorf("%w: empty code", ErrInvalid)
	}
	if dc.DiscountValue <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalid)
	}
	if dc.DiscountType == models.DiscountPercentage && dc.DiscountValue > 100 {
		return fmt.Errorf("%w: percentage cannot exceed 100", ErrInvalid)
	}
	if dc.DiscountType != models.DiscountPercentage && dc.DiscountType != models.DiscountFixed {
		return fmt.Errorf("%w: type must be percentage or fixed", ErrInvalid)
	}
	if dc.ExpiryDate != nil && *dc.ExpiryDate != "" {
		if _, err := time.Parse(models.DateLayout, *dc.ExpiryDate); err != nil {
			return fmt.Errorf("%w: bad expiry date", ErrInvalid)
		}
	}
	return nil
}
