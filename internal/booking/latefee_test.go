package booking

import (
	"testing"
	"time"
)

func TestLateSurcharge(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("three days late", func(t *testing.T) {
		if fee := LateSurcharge(now, "2026-03-07"); fee != 15 {
			t.Errorf("expected 15, got %.0f", fee)
		}
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		early := time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)
		late := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
		if LateSurcharge(early, "2026-03-07") != LateSurcharge(late, "2026-03-07") {
			t.Error("surcharge must only depend on the calendar day")
		}
	})

	t.Run("never negative", func(t *testing.T) {
		if fee := LateSurcharge(now, "2026-03-20"); fee != 0 {
			t.Errorf("future departure must cost 0, got %.0f", fee)
		}
	})

	t.Run("same day is not late", func(t *testing.T) {
		if fee := LateSurcharge(now, "2026-03-10"); fee != 0 {
			t.Errorf("expected 0 on the departure day itself, got %.0f", fee)
		}
	})

	t.Run("bad date yields zero", func(t *testing.T) {
		if fee := LateSurcharge(now, "not-a-date"); fee != 0 {
			t.Errorf("expected 0, got %.0f", fee)
		}
	})
}
