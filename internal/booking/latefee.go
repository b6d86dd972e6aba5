package booking

import (
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

// LateFeePerDay is the flat overstay surcharge per started day, in the
// same currency units as TotalPrice.
const LateFeePerDay float64 = 5

// LateSurcharge computes the overstay fee as of now. Both sides are
// normalized to midnight; time of day never affects the amount. The
// result is recomputed on every read so displays always show the
// up-to-the-day figure until checkout freezes it into FinalPrice.
func LateSurcharge(now time.Time, originalDepartureDate string) float64 {
	depart, err := models.ParseDate(originalDepartureDate)
	if err != nil {
		return 0
	}
	today := clock.Midnight(now)
	daysLate := int(today.Sub(clock.Midnight(depart)).Hours() / 24)
	if daysLate < 0 {
		daysLate = 0
	}
	return float64(daysLate) * LateFeePerDay
}
