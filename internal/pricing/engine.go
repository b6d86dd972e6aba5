// Package pricing computes stay prices from the tiered day-rate table.
package pricing

import (
	"sync"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

// Engine is a pure calculator over an injected PricingConfig. Results
// are memoized per (config version, duration); the memo is dropped
// whenever a config with a different version is seen.
type Engine struct {
	mu      sync.Mutex
	version int64
	memo    map[int]float64
}

func NewEngine() *Engine {
	return &Engine{memo: make(map[int]float64)}
}

// StayDuration converts a stay window into billable days: the exact
// span between the arrival and departure instants, rounded up to whole
// days, minimum 1. Exactly 24h is one day; a minute past is two.
// Returns ok=false if any date or time field is missing or malformed;
// callers treat that as "not yet computable", not an error.
func StayDuration(arrivalDate, arrivalTime, departureDate, departureTime string) (int, bool) {
	if arrivalDate == "" || arrivalTime == "" || departureDate == "" || departureTime == "" {
		return 0, false
	}
	arrive, err := time.Parse(models.DateLayout+" "+models.TimeLayout, arrivalDate+" "+arrivalTime)
	if err != nil {
		return 0, false
	}
	depart, err := time.Parse(models.DateLayout+" "+models.TimeLayout, departureDate+" "+departureTime)
	if err != nil {
		return 0, false
	}
	span := depart.Sub(arrive)
	if span <= 0 {
		return 1, true
	}
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, true
}

// Calculate returns the total price for the stay, or ok=false when the
// window is incomplete. Each car is billed independently at the full
// tiered rate.
func (e *Engine) Calculate(cfg *models.PricingConfig, arrivalDate, arrivalTime, departureDate, departureTime string, numberOfCars int) (float64, bool) {
	if cfg == nil {
		return 0, false
	}
	duration, ok := StayDuration(arrivalDate, arrivalTime, departureDate, departureTime)
	if !ok {
		return 0, false
	}
	if numberOfCars < 1 {
		numberOfCars = 1
	}

	e.mu.Lock()
	if e.version != cfg.Version {
		e.version = cfg.Version
		e.memo = make(map[int]float64)
	}
	perCar, hit := e.memo[duration]
	if !hit {
		perCar = PriceForDuration(cfg, duration)
		e.memo[duration] = perCar
	}
	e.mu.Unlock()

	return perCar * float64(numberOfCars), true
}

// PriceForDuration applies the tier table for a single car.
func PriceForDuration(cfg *models.PricingConfig, duration int) float64 {
	if duration < 1 {
		duration = 1
	}
	maxDay := cfg.MidRangeMaxDay
	if maxDay <= 10 {
		maxDay = 30
	}
	switch {
	case duration <= 10:
		return cfg.DailyPrices[duration]
	case duration <= maxDay:
		return cfg.DailyPrices[10] + float64(duration-10)*cfg.MidRangeRate
	default:
		return cfg.DailyPrices[10] +
			float64(maxDay-10)*cfg.MidRangeRate +
			float64(duration-maxDay)*cfg.LongTermRate
	}
}
