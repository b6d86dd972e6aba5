// Package capacity answers "how full is the lot" questions over the
// booking set. Two pools exist: 180 regular spots and 20 overflow
// spots usable only by bookings that leave keys.
package capacity

import (
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

const (
	MaxRegular      = 180
	MaxKeysOverflow = 20
	MaxTotal        = MaxRegular + MaxKeysOverflow
)

// Snapshot is the occupancy picture for a single date.
type Snapshot struct {
	Date            string `json:"date"`
	RegularOccupied int    `json:"regular_occupied"`
	KeysOccupied    int    `json:"keys_occupied"`
	Total           int    `json:"total"`
	MaxRegular      int    `json:"max_regular"`
	MaxKeysOverflow int    `json:"max_keys_overflow"`
	MaxTotal        int    `json:"max_total"`
	LeavingCount    int    `json:"leaving_count"`
	OverRegular     bool   `json:"is_over_regular_limit"`
	OverTotal       bool   `json:"is_over_total_limit"`
}

// ForDate computes occupancy for one date. A booking occupies d when
// it is confirmed or arrived and arrival <= d <= departure: the
// departure day itself still holds the spot until the car leaves.
// excludeID ignores one booking, used when re-pricing an edit.
func ForDate(bookings []models.Booking, date string, excludeID string) Snapshot {
	snap := Snapshot{
		Date:            date,
		MaxRegular:      MaxRegular,
		MaxKeysOverflow: MaxKeysOverflow,
		MaxTotal:        MaxTotal,
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return snap
	}
	for i := range bookings {
		b := &bookings[i]
		if b.ID == excludeID || !b.Occupies() {
			continue
		}
		arrive, err1 := models.ParseDate(b.ArrivalDate)
		depart, err2 := models.ParseDate(b.DepartureDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if d.Before(arrive) || d.After(depart) {
			continue
		}
		if b.CarKeys {
			snap.KeysOccupied += b.Cars()
		} else {
			snap.RegularOccupied += b.Cars()
		}
		if depart.Equal(d) {
			snap.LeavingCount += b.Cars()
		}
	}
	snap.Total = snap.RegularOccupied + snap.KeysOccupied
	snap.OverRegular = snap.RegularOccupied > MaxRegular
	snap.OverTotal = snap.Total > MaxTotal
	return snap
}

// DayLoad is one row of the range breakdown returned with a capacity
// conflict so an operator can see exactly which days are the problem.
type DayLoad struct {
	Date      string `json:"date"`
	Occupied  int    `json:"occupied"`
	Limit     int    `json:"limit"`
	WouldFit  bool   `json:"would_fit"`
	Remaining int    `json:"remaining"`
}

// ForRange reports whether a booking of cars/withKeys fits for every
// date of its stay, inclusive on both ends. The ceiling per date is
// MaxTotal when the candidate leaves keys (it may spill into the
// overflow pool) and MaxRegular otherwise. Occupancy is not monotonic
// across a range, so every single date is tested.
func ForRange(bookings []models.Booking, arrivalDate, departureDate string, cars int, withKeys bool, excludeID string) (bool, []DayLoad) {
	arrive, err1 := models.ParseDate(arrivalDate)
	depart, err2 := models.ParseDate(departureDate)
	if err1 != nil || err2 != nil || depart.Before(arrive) {
		return false, nil
	}
	if cars < 1 {
		cars = 1
	}

	fits := true
	var days []DayLoad
	for d := arrive; !d.After(depart); d = d.AddDate(0, 0, 1) {
		date := d.Format(models.DateLayout)
		snap := ForDate(bookings, date, excludeID)

		limit := MaxRegular
		occupied := snap.RegularOccupied
		if withKeys {
			limit = MaxTotal
			occupied = snap.Total
		}
		dayFits := occupied+cars <= limit
		if !dayFits {
			fits = false
		}
		days = append(days, DayLoad{
			Date:      date,
			Occupied:  occupied,
			Limit:     limit,
			WouldFit:  dayFits,
			Remaining: limit - occupied,
		})
	}
	return fits, days
}

// Overview returns occupancy for days consecutive dates starting at
// start, as shown on the rolling dashboard. Unlike ForDate, the
// departure day is NOT counted here (arrival <= d < departure): the
// dashboard shows spots that stay blocked overnight. The two views
// intentionally disagree on the departure day; both are in use.
func Overview(bookings []models.Booking, start time.Time, days int) []Snapshot {
	out := make([]Snapshot, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		date := d.Format(models.DateLayout)

		snap := Snapshot{
			Date:            date,
			MaxRegular:      MaxRegular,
			MaxKeysOverflow: MaxKeysOverflow,
			MaxTotal:        MaxTotal,
		}
		for j := range bookings {
			b := &bookings[j]
			if !b.Occupies() {
				continue
			}
			arrive, err1 := models.ParseDate(b.ArrivalDate)
			depart, err2 := models.ParseDate(b.DepartureDate)
			if err1 != nil || err2 != nil {
				continue
			}
			if d.Before(arrive) || !d.Before(depart) {
				continue
			}
			if b.CarKeys {
				snap.KeysOccupied += b.Cars()
			} else {
				snap.RegularOccupied += b.Cars()
			}
		}
		snap.Total = snap.RegularOccupied + snap.KeysOccupied
		snap.OverRegular = snap.RegularOccupied > MaxRegular
		snap.OverTotal = snap.Total > MaxTotal
		out = append(out, snap)
	}
	return out
}
