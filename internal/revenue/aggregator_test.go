package revenue

import (
	"testing"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

func day(s string) time.Time {
	t, _ := time.Parse(models.DateLayout, s)
	return t
}

func finished(departure, completedBy string, price float64, method models.PaymentMethod) models.Booking {
	return models.Booking{
		Status:        models.BookingCheckedOut,
		DepartureDate: departure,
		TotalPrice:    price,
		PaymentStatus: models.PaymentPaid,
		PaymentMethod: method,
		CompletedBy:   completedBy,
	}
}

func TestRealizedVersusProjected(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	final := 45.0

	bookings := []models.Booking{
		finished("2026-03-05", "ivan", 40, models.MethodCash),
		// A finalized price wins over the quoted total.
		{
			Status:        models.BookingCheckedOut,
			DepartureDate: "2026-03-06",
			TotalPrice:    40,
			FinalPrice:    &final,
			PaymentStatus: models.PaymentPaid,
			PaymentMethod: models.MethodCard,
			CompletedBy:   "maria",
		},
		// Confirmed with a future departure: projected.
		{
			Status:        models.BookingConfirmed,
			DepartureDate: "2026-03-15",
			TotalPrice:    30,
		},
		// Past departure that never checked out earns nothing.
		{
			Status:        models.BookingNoShow,
			DepartureDate: "2026-03-05",
			TotalPrice:    99,
		},
		// Cancelled future booking projects nothing.
		{
			Status:        models.BookingCancelled,
			DepartureDate: "2026-03-15",
			TotalPrice:    99,
		},
	}

	report := Aggregate(bookings, day("2026-03-01"), day("2026-03-31"), now, false)

	if report.RealizedTotal != 85 {
		t.Errorf("expected realized 85, got %.2f", report.RealizedTotal)
	}
	if report.ProjectedTotal != 30 {
		t.Errorf("expected projected 30, got %.2f", report.ProjectedTotal)
	}
	if len(report.ByDay) != 3 {
		t.Fatalf("expected 3 day rows, got %d", len(report.ByDay))
	}
	// Day rows come out in calendar order.
	if report.ByDay[0].Date != "2026-03-05" || report.ByDay[2].Date != "2026-03-15" {
		t.Errorf("day rows out of order: %+v", report.ByDay)
	}
	if report.ByDay[2].Projected != 30 || report.ByDay[2].Realized != 0 {
		t.Errorf("future day must be projected only: %+v", report.ByDay[2])
	}
}

func TestSameDayDepartureIsRealized(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		// Checked out this afternoon; must count today, not tomorrow.
		finished("2026-03-10", "ivan", 40, models.MethodCash),
		// Departing tomorrow: still projected.
		{Status: models.BookingConfirmed, DepartureDate: "2026-03-11", TotalPrice: 30},
	}

	report := Aggregate(bookings, day("2026-03-10"), day("2026-03-11"), now, false)
	if report.RealizedTotal != 40 {
		t.Errorf("today's checkout must be realized same day, got %.2f", report.RealizedTotal)
	}
	if report.ProjectedTotal != 30 {
		t.Errorf("expected tomorrow projected 30, got %.2f", report.ProjectedTotal)
	}
	if len(report.ByDay) != 2 || report.ByDay[0].Realized != 40 {
		t.Errorf("bad day rows: %+v", report.ByDay)
	}
}

func TestWindowFiltersOnDeparture(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		finished("2026-02-28", "ivan", 40, models.MethodCash),
		finished("2026-03-01", "ivan", 40, models.MethodCash),
		finished("2026-03-07", "ivan", 40, models.MethodCash),
	}

	report := Aggregate(bookings, day("2026-03-01"), day("2026-03-07"), now, false)
	if report.RealizedTotal != 80 {
		t.Errorf("window must include both endpoints and nothing before, got %.2f", report.RealizedTotal)
	}
}

func TestOperatorBreakdownWithSystemFallback(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		finished("2026-03-05", "ivan", 40, models.MethodCash),
		finished("2026-03-05", "ivan", 20, models.MethodCard),
		finished("2026-03-06", "", 10, models.MethodCash),
	}

	report := Aggregate(bookings, day("2026-03-01"), day("2026-03-31"), now, false)
	if len(report.ByOperator) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(report.ByOperator))
	}
	// Sorted by name, so ivan before system.
	if report.ByOperator[0].Operator != "ivan" || report.ByOperator[0].Realized != 60 || report.ByOperator[0].Bookings != 2 {
		t.Errorf("bad ivan row: %+v", report.ByOperator[0])
	}
	if report.ByOperator[1].Operator != "system" || report.ByOperator[1].Realized != 10 {
		t.Errorf("expected a system fallback row: %+v", report.ByOperator[1])
	}
}

func TestMethodBreakdown(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	bookings := []models.Booking{
		finished("2026-03-05", "ivan", 40, models.MethodCash),
		finished("2026-03-05", "ivan", 20, models.MethodCard),
		{Status: models.BookingConfirmed, DepartureDate: "2026-03-20", TotalPrice: 30},
	}

	report := Aggregate(bookings, day("2026-03-01"), day("2026-03-31"), now, false)
	want := map[string]float64{"cash": 40, "card": 20}
	for _, m := range report.ByMethod {
		switch m.Method {
		case "cash", "card":
			if m.Realized != want[m.Method] {
				t.Errorf("%s: expected %.0f, got %.2f", m.Method, want[m.Method], m.Realized)
			}
		case "pending-projected":
			if m.Projected != 30 {
				t.Errorf("expected projected bucket of 30, got %.2f", m.Projected)
			}
		default:
			t.Errorf("unexpected method bucket %q", m.Method)
		}
	}
	if len(report.ByMethod) != 3 {
		t.Errorf("expected 3 method buckets, got %d", len(report.ByMethod))
	}
}

func TestAdminViewCountsPaidStays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	// Paid on arrival but the operator forgot to run the checkout.
	stuck := models.Booking{
		Status:        models.BookingArrived,
		DepartureDate: "2026-03-05",
		TotalPrice:    40,
		PaymentStatus: models.PaymentPaid,
		PaymentMethod: models.MethodCard,
	}

	public := Aggregate([]models.Booking{stuck}, day("2026-03-01"), day("2026-03-31"), now, false)
	if public.RealizedTotal != 0 {
		t.Errorf("operator view must not count it, got %.2f", public.RealizedTotal)
	}

	admin := Aggregate([]models.Booking{stuck}, day("2026-03-01"), day("2026-03-31"), now, true)
	if admin.RealizedTotal != 40 {
		t.Errorf("admin view must count the paid stay, got %.2f", admin.RealizedTotal)
	}
}
