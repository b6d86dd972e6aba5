package booking

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/pricing"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&store.Record{}); err != nil {
		t.Fatalf("failed to auto migrate: %v", err)
	}
	kv := store.NewGormKV(db)
	return NewService(kv, pricing.NewEngine(), pricing.NewStore(kv), clock.Fixed(now), nil)
}

func testBooking() *models.Booking {
	return &models.Booking{
		ArrivalDate:   "2026-03-01",
		ArrivalTime:   "10:00",
		DepartureDate: "2026-03-05",
		DepartureTime: "12:00",
		CustomerName:  "Jana Petrova",
		LicensePlates: []string{"CA1234BH"},
	}
}

func TestCreateBooking(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, err := svc.Create(testBooking(), "reception")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if b.Status != models.BookingNew {
		t.Errorf("expected status new, got %s", b.Status)
	}
	if b.ID == "" || len(b.BookingCode) != 11 || b.BookingCode[:3] != "SP-" {
		t.Errorf("bad identity: id=%q code=%q", b.ID, b.BookingCode)
	}
	if b.NumberOfCars != 1 {
		t.Errorf("expected default car count 1, got %d", b.NumberOfCars)
	}
	// 4 days 2 hours rounds up to 5 billable days (default table: 26).
	if b.TotalPrice != 26 {
		t.Errorf("expected price 26, got %.2f", b.TotalPrice)
	}
	if len(b.StatusHistory) != 1 || b.StatusHistory[0].Action != "create" {
		t.Errorf("expected a create audit entry, got %+v", b.StatusHistory)
	}

	t.Run("rejects reversed window", func(t *testing.T) {
		bad := testBooking()
		bad.DepartureDate = "2026-02-28"
		if _, err := svc.Create(bad, "reception"); !errors.Is(err, ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects six plates", func(t *testing.T) {
		bad := testBooking()
		bad.LicensePlates = []string{"1", "2", "3", "4", "5", "6"}
		if _, err := svc.Create(bad, "reception"); !errors.Is(err, ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestHappyPathLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, err := svc.Create(testBooking(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	b, err = svc.Accept(b.ID, "ivan", false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if b.Status != models.BookingConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}

	b, err = svc.MarkArrived(b.ID, "ivan", models.MethodCard)
	if err != nil {
		t.Fatalf("MarkArrived: %v", err)
	}
	if b.PaymentStatus != models.PaymentPaid || b.PaidAt == nil {
		t.Errorf("card payment should settle immediately, got %s", b.PaymentStatus)
	}
	if b.ArrivedAt == nil {
		t.Error("expected arrivedAt to be set")
	}

	b, err = svc.Checkout(b.ID, "maria", nil, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if b.Status != models.BookingCheckedOut {
		t.Errorf("expected checked-out, got %s", b.Status)
	}
	if b.FinalPrice == nil || *b.FinalPrice != b.TotalPrice {
		t.Errorf("expected final price %.2f, got %v", b.TotalPrice, b.FinalPrice)
	}
	if b.CompletedBy != "maria" {
		t.Errorf("expected completedBy maria, got %q", b.CompletedBy)
	}

	// new -> confirmed -> arrived -> checked-out plus the create entry.
	if len(b.StatusHistory) != 4 {
		t.Errorf("expected 4 audit entries, got %d", len(b.StatusHistory))
	}

	t.Run("terminal state refuses everything", func(t *testing.T) {
		if _, err := svc.Accept(b.ID, "x", false); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Accept after checkout: %v", err)
		}
		if _, err := svc.Cancel(b.ID, "x", "changed mind"); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Cancel after checkout: %v", err)
		}
		if _, err := svc.MarkArrived(b.ID, "x", models.MethodCash); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("MarkArrived after checkout: %v", err)
		}
	})
}

func TestPayOnLeaveFlow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, _ := svc.Create(testBooking(), "")
	b, _ = svc.Accept(b.ID, "op", false)

	b, err := svc.MarkArrived(b.ID, "op", models.MethodPayOnLeave)
	if err != nil {
		t.Fatalf("MarkArrived: %v", err)
	}
	if b.PaymentStatus != models.PaymentPending {
		t.Fatalf("expected pending, got %s", b.PaymentStatus)
	}

	// Checkout with a pending payment needs a method.
	if _, err := svc.Checkout(b.ID, "op", nil, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error without a method, got %v", err)
	}

	b, err = svc.Checkout(b.ID, "op", nil, models.MethodCash)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if b.PaymentStatus != models.PaymentPaid || b.PaymentMethod != models.MethodCash {
		t.Errorf("expected cash-settled payment, got %s/%s", b.PaymentStatus, b.PaymentMethod)
	}
}

func TestDeclineAndNoShowRequireReason(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, _ := svc.Create(testBooking(), "")
	if _, err := svc.Decline(b.ID, "op", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for empty reason, got %v", err)
	}

	declined, err := svc.Decline(b.ID, "op", "duplicate request")
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if declined.Status != models.BookingDeclined || declined.DeclinedBy != "op" || declined.DeclinedAt == nil {
		t.Errorf("decline attribution incomplete: %+v", declined)
	}

	b2, _ := svc.Create(testBooking(), "")
	b2, _ = svc.Accept(b2.ID, "op", false)
	if _, err := svc.MarkNoShow(b2.ID, "op", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for empty reason, got %v", err)
	}
	shown, err := svc.MarkNoShow(b2.ID, "op", "never arrived")
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if shown.NoShowBy != "op" || shown.NoShowAt == nil {
		t.Errorf("no-show attribution incomplete: %+v", shown)
	}
}

func TestMarkLateFreezesOriginalDeparture(t *testing.T) {
	now := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, _ := svc.Create(testBooking(), "") // departs 2026-03-05
	b, _ = svc.Accept(b.ID, "op", false)
	b, _ = svc.MarkArrived(b.ID, "op", models.MethodCash)

	b, err := svc.MarkLate(b.ID, "op")
	if err != nil {
		t.Fatalf("MarkLate: %v", err)
	}
	if !b.IsLate || b.LateDeparture == nil {
		t.Fatal("expected late flag and frozen departure")
	}
	if b.LateDeparture.OriginalDepartureDate != "2026-03-05" {
		t.Errorf("expected frozen departure 2026-03-05, got %s", b.LateDeparture.OriginalDepartureDate)
	}
	// Three days past departure at 5 per day.
	if b.LateDeparture.Surcharge != 15 {
		t.Errorf("expected surcharge 15, got %.0f", b.LateDeparture.Surcharge)
	}

	// Editing the live departure must not move the frozen reference.
	edit := testBooking()
	edit.DepartureDate = "2026-03-09"
	edit.NumberOfCars = 1
	b, err = svc.Update(b.ID, edit, "op")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if b.LateDeparture.OriginalDepartureDate != "2026-03-05" {
		t.Error("edit moved the frozen original departure")
	}

	// Marking late twice keeps the first freeze.
	b, err = svc.MarkLate(b.ID, "op")
	if err != nil {
		t.Fatalf("second MarkLate: %v", err)
	}
	if b.LateDeparture.OriginalDepartureDate != "2026-03-05" {
		t.Error("second mark-late moved the frozen departure")
	}

	t.Run("checkout requires fee confirmation", func(t *testing.T) {
		if _, err := svc.Checkout(b.ID, "op", nil, ""); !errors.Is(err, ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		fee := 20.0 // operator adjusted upward
		done, err := svc.Checkout(b.ID, "op", &fee, "")
		if err != nil {
			t.Fatalf("Checkout: %v", err)
		}
		if done.FinalPrice == nil || *done.FinalPrice != done.TotalPrice+20 {
			t.Errorf("expected final = total + 20, got %v", done.FinalPrice)
		}
	})
}

func TestAcceptCapacityConflictAndOverride(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	// Fill the regular pool across the candidate's stay.
	for i := 0; i < 180; i++ {
		filler := testBooking()
		b, err := svc.Create(filler, "seed")
		if err != nil {
			t.Fatalf("seed create %d: %v", i, err)
		}
		if _, err := svc.Accept(b.ID, "seed", true); err != nil {
			t.Fatalf("seed accept %d: %v", i, err)
		}
	}

	candidate, _ := svc.Create(testBooking(), "op")
	_, err := svc.Accept(candidate.ID, "op", false)
	var conflict *CapacityConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected a capacity conflict, got %v", err)
	}
	if len(conflict.Days) != 5 {
		t.Errorf("expected a 5-day breakdown, got %d days", len(conflict.Days))
	}
	for _, d := range conflict.Days {
		if d.WouldFit {
			t.Errorf("day %s should not fit", d.Date)
		}
	}

	// The refusal left the booking untouched.
	got, _ := svc.Get(candidate.ID)
	if got.Status != models.BookingNew || got.CapacityOverride {
		t.Errorf("refused accept must not mutate: %+v", got.Status)
	}

	forced, err := svc.Accept(candidate.ID, "admin", true)
	if err != nil {
		t.Fatalf("forced accept: %v", err)
	}
	if !forced.CapacityOverride {
		t.Error("forced accept must set the override flag")
	}

	// The flag survives an ordinary edit.
	edit := testBooking()
	edit.CapacityOverride = true
	after, err := svc.Update(forced.ID, edit, "op")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !after.CapacityOverride {
		t.Error("override flag lost on edit")
	}
}

func TestUndoRestoresPriorSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	b, _ := svc.Create(testBooking(), "")
	confirmed, err := svc.Accept(b.ID, "ivan", false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	historyLen := len(confirmed.StatusHistory)

	restored, err := svc.Undo(b.ID, "ivan")
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if restored.Status != models.BookingNew {
		t.Errorf("expected restored status new, got %s", restored.Status)
	}
	// History is append-only: the undo adds an entry, removes none.
	if len(restored.StatusHistory) != historyLen+1 {
		t.Errorf("expected %d audit entries, got %d", historyLen+1, len(restored.StatusHistory))
	}
	last := restored.StatusHistory[len(restored.StatusHistory)-1]
	if last.Action != "undo" || last.Operator != "ivan" {
		t.Errorf("bad undo entry: %+v", last)
	}

	t.Run("stack is per operator", func(t *testing.T) {
		if _, err := svc.Undo(b.ID, "someone-else"); !errors.Is(err, ErrNothingToUndo) {
			t.Errorf("expected nothing to undo for another operator, got %v", err)
		}
	})

	t.Run("stack drains", func(t *testing.T) {
		if _, err := svc.Undo(b.ID, "ivan"); !errors.Is(err, ErrNothingToUndo) {
			t.Errorf("expected an empty stack, got %v", err)
		}
	})
}

func TestAcceptAssignsSpots(t *testing.T) {
	now := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	first, _ := svc.Create(testBooking(), "op")
	first, err := svc.Accept(first.ID, "op", false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !reflect.DeepEqual(first.AssignedSpots, []int{1}) {
		t.Errorf("expected spot [1], got %v", first.AssignedSpots)
	}

	// An overlapping party of two parks next to the first car.
	group := testBooking()
	group.NumberOfCars = 2
	group.LicensePlates = []string{"A", "B"}
	second, _ := svc.Create(group, "op")
	second, err = svc.Accept(second.ID, "op", false)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !reflect.DeepEqual(second.AssignedSpots, []int{2, 3}) {
		t.Errorf("expected spots [2 3], got %v", second.AssignedSpots)
	}

	t.Run("disjoint stay reuses freed spots", func(t *testing.T) {
		later := testBooking()
		later.ArrivalDate = "2026-04-01"
		later.DepartureDate = "2026-04-03"
		b, _ := svc.Create(later, "op")
		b, err := svc.Accept(b.ID, "op", false)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if !reflect.DeepEqual(b.AssignedSpots, []int{1}) {
			t.Errorf("expected spot [1] again, got %v", b.AssignedSpots)
		}
	})

	t.Run("keys bookings use their own pool", func(t *testing.T) {
		keys := testBooking()
		keys.CarKeys = true
		b, _ := svc.Create(keys, "op")
		b, err := svc.Accept(b.ID, "op", false)
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if !reflect.DeepEqual(b.AssignedSpots, []int{1}) {
			t.Errorf("expected overflow spot [1], got %v", b.AssignedSpots)
		}
	})
}

// flakyKV fails the next n writes, standing in for storage going away
// mid-transition.
type flakyKV struct {
	store.KV
	failSets int
}

func (f *flakyKV) Set(key string, value []byte) error {
	if f.failSets > 0 {
		f.failSets--
		return errors.New("disk full")
	}
	return f.KV.Set(key, value)
}

func TestFailedTransitionConsumesNoUndoSlot(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&store.Record{}); err != nil {
		t.Fatalf("failed to auto migrate: %v", err)
	}
	kv := &flakyKV{KV: store.NewGormKV(db)}
	svc := NewService(kv, pricing.NewEngine(), pricing.NewStore(kv), clock.Fixed(now), nil)

	b, err := svc.Create(testBooking(), "op")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	kv.failSets = 1
	if _, err := svc.Accept(b.ID, "op", false); err == nil {
		t.Fatal("expected the accept to fail on the broken write")
	}

	got, _ := svc.Get(b.ID)
	if got.Status != models.BookingNew {
		t.Fatalf("failed write must leave the booking untouched, got %s", got.Status)
	}
	if _, err := svc.Undo(b.ID, "op"); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("a failed transition must not occupy an undo slot, got %v", err)
	}

	// Once the write goes through the slot exists as usual.
	if _, err := svc.Accept(b.ID, "op", false); err != nil {
		t.Fatalf("Accept after recovery: %v", err)
	}
	restored, err := svc.Undo(b.ID, "op")
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if restored.Status != models.BookingNew {
		t.Errorf("expected restored status new, got %s", restored.Status)
	}
}

func TestTransitionOnMissingBooking(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	if _, err := svc.Accept("no-such-id", "op", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
	if _, err := svc.Checkout("no-such-id", "op", nil, models.MethodCash); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}
