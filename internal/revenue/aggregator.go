// Package revenue rolls bookings up into realized and projected
// figures for reporting. Nothing here mutates booking data; every
// breakdown is an independent view over the same filtered set.
package revenue

import (
	"sort"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

type DayTotal struct {
	Date      string  `json:"date"`
	Realized  float64 `json:"realized"`
	Projected float64 `json:"projected"`
	Bookings  int     `json:"bookings"`
}

type OperatorTotal struct {
	Operator string  `json:"operator"`
	Realized float64 `json:"realized"`
	Bookings int     `json:"bookings"`
}

type MethodTotal struct {
	Method    string  `json:"method"`
	Realized  float64 `json:"realized"`
	Projected float64 `json:"projected"`
}

type Report struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	RealizedTotal  float64         `json:"realized_total"`
	ProjectedTotal float64         `json:"projected_total"`
	ByDay          []DayTotal      `json:"by_day"`
	ByOperator     []OperatorTotal `json:"by_operator"`
	ByMethod       []MethodTotal   `json:"by_method"`
}

// Aggregate partitions bookings whose departure date falls inside
// [from, to] by whether the departure day has started. A departure
// dated today is past: checkouts happen on the departure day and must
// show up in that day's realized figures, not the next morning's.
//
// Past departures are realized only when the booking checked out (the
// admin variant also counts paid ones); the amount is the finalized
// price when present, the quoted total otherwise. Future departures of
// confirmed/arrived bookings are projected and never counted as
// realized.
func Aggregate(bookings []models.Booking, from, to time.Time, now time.Time, adminView bool) *Report {
	report := &Report{
		From: from.Format(models.DateLayout),
		To:   to.Format(models.DateLayout),
	}

	today := clock.Midnight(now)
	byDay := make(map[string]*DayTotal)
	byOperator := make(map[string]*OperatorTotal)
	byMethod := make(map[string]*MethodTotal)

	for i := range bookings {
		b := &bookings[i]
		depart, err := models.ParseDate(b.DepartureDate)
		if err != nil || depart.Before(from) || depart.After(to) {
			continue
		}

		date := b.DepartureDate
		day := byDay[date]
		if day == nil {
			day = &DayTotal{Date: date}
			byDay[date] = day
		}

		if !depart.After(today) {
			realized := b.Status == models.BookingCheckedOut
			if adminView {
				realized = realized || b.PaymentStatus == models.PaymentPaid
			}
			if !realized {
				continue
			}
			amount := b.EffectivePrice()
			report.RealizedTotal += amount
			day.Realized += amount
			day.Bookings++

			operator := b.CompletedBy
			if operator == "" {
				operator = "system"
			}
			op := byOperator[operator]
			if op == nil {
				op = &OperatorTotal{Operator: operator}
				byOperator[operator] = op
			}
			op.Realized += amount
			op.Bookings++

			method := string(b.PaymentMethod)
			if method == "" {
				method = "unknown"
			}
			m := byMethod[method]
			if m == nil {
				m = &MethodTotal{Method: method}
				byMethod[method] = m
			}
			m.Realized += amount
		} else if b.Occupies() {
			amount := b.EffectivePrice()
			report.ProjectedTotal += amount
			day.Projected += amount
			day.Bookings++

			m := byMethod["pending-projected"]
			if m == nil {
				m = &MethodTotal{Method: "pending-projected"}
				byMethod["pending-projected"] = m
			}
			m.Projected += amount
		}
	}

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if day, ok := byDay[d.Format(models.DateLayout)]; ok {
			report.ByDay = append(report.ByDay, *day)
		}
	}
	for _, op := range byOperator {
		report.ByOperator = append(report.ByOperator, *op)
	}
	sort.Slice(report.ByOperator, func(i, j int) bool {
		return report.ByOperator[i].Operator < report.ByOperator[j].Operator
	})
	for _, m := range byMethod {
		report.ByMethod = append(report.ByMethod, *m)
	}
	sort.Slice(report.ByMethod, func(i, j int) bool {
		return report.ByMethod[i].Method < report.ByMethod[j].Method
	})
	return report
}
