// Package booking implements the reservation lifecycle: intake,
// accept/decline, arrival, late marking, checkout and the audit trail
// that ties every transition to an operator.
package booking

import (
	"fmt"
	"log"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/capacity"
	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/notifier"
	"github.com/alexzinovi/Skyparking-sub000/internal/pricing"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
)

type Service struct {
	repo    *Repository
	kv      store.KV
	engine  *pricing.Engine
	pricing *pricing.Store
	clk     clock.Clock
	notifs  notifier.Notifier
	undo    *undoStack
}

func NewService(kv store.KV, engine *pricing.Engine, pricingStore *pricing.Store, clk clock.Clock, notifs notifier.Notifier) *Service {
	return &Service{
		repo:    NewRepository(kv),
		kv:      kv,
		engine:  engine,
		pricing: pricingStore,
		clk:     clk,
		notifs:  notifs,
		undo:    newUndoStack(),
	}
}

// Create validates and stores a new booking in status "new". The
// quoted price is computed from the current pricing config; when the
// stay window is incomplete the price stays zero until an edit
// completes it.
func (s *Service) Create(b *models.Booking, operator string) (*models.Booking, error) {
	if err := validateWindow(b); err != nil {
		return nil, err
	}
	if b.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if len(b.LicensePlates) < 1 || len(b.LicensePlates) > 5 {
		return nil, fmt.Errorf("%w: between 1 and 5 license plates required", ErrValidation)
	}
	if b.NumberOfCars < 1 {
		b.NumberOfCars = 1
	}

	now := s.clk.Now()
	b.ID = NewID()
	b.BookingCode = NewBookingCode()
	b.Status = models.BookingNew
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentUnpaid
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	b.StatusHistory = []models.StatusChange{{
		To:        models.BookingNew,
		Action:    "create",
		Timestamp: now,
		Operator:  displayOperator(operator),
	}}

	if cfg, err := s.pricing.Load(); err == nil {
		if price, ok := s.engine.Calculate(cfg, b.ArrivalDate, b.ArrivalTime, b.DepartureDate, b.DepartureTime, b.NumberOfCars); ok {
			b.TotalPrice = price
		}
	}

	if err := s.repo.Save(b); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(b); err != nil {
			log.Printf("Failed to send booking notification: %v", err)
		}
	}

	return b, nil
}

// Get returns the booking with the late surcharge refreshed as of now.
func (s *Service) Get(id string) (*models.Booking, error) {
	b, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	s.refreshSurcharge(b)
	return b, nil
}

func (s *Service) List() ([]models.Booking, error) {
	bookings, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		s.refreshSurcharge(&bookings[i])
	}
	return bookings, nil
}

// Update applies a field edit. Identity, lifecycle state, audit
// history and the frozen late-departure reference are never touched by
// an edit; the capacity override flag survives unless the caller
// explicitly clears it. Last write wins for plain fields.
func (s *Service) Update(id string, in *models.Booking, operator string) (*models.Booking, error) {
	var out *models.Booking
	err := s.kv.WithLock(store.BookingPrefix+id, func() error {
		b, err := s.repo.Get(id)
		if err != nil {
			return err
		}
		if err := validateWindowFields(in.ArrivalDate, in.DepartureDate); err != nil {
			return err
		}
		if len(in.LicensePlates) > 5 {
			return fmt.Errorf("%w: at most 5 license plates", ErrValidation)
		}

		snap := *b

		b.ArrivalDate = in.ArrivalDate
		b.ArrivalTime = in.ArrivalTime
		// The live departure may move; the frozen original inside
		// LateDeparture never does.
		b.DepartureDate = in.DepartureDate
		b.DepartureTime = in.DepartureTime
		b.NumberOfCars = in.NumberOfCars
		if b.NumberOfCars < 1 {
			b.NumberOfCars = 1
		}
		b.CarKeys = in.CarKeys
		b.CustomerName = in.CustomerName
		b.Email = in.Email
		b.Phone = in.Phone
		b.LicensePlates = in.LicensePlates
		b.PassengerCount = in.PassengerCount
		b.Invoice = in.Invoice
		b.DiscountCode = in.DiscountCode
		b.CapacityOverride = in.CapacityOverride

		if cfg, err := s.pricing.Load(); err == nil {
			if price, ok := s.engine.Calculate(cfg, b.ArrivalDate, b.ArrivalTime, b.DepartureDate, b.DepartureTime, b.NumberOfCars); ok {
				b.TotalPrice = price
			}
		}

		b.UpdatedAt = s.clk.Now()
		if err := s.repo.Save(b); err != nil {
			return err
		}
		s.undo.push(displayOperator(operator), &snap)
		out = b
		return nil
	})
	return out, err
}

func (s *Service) Delete(id string) error {
	return s.kv.WithLock(store.BookingPrefix+id, func() error {
		if _, err := s.repo.Get(id); err != nil {
			return err
		}
		return s.repo.Delete(id)
	})
}

// Accept confirms a new booking. Unless forced, the whole stay window
// is checked against capacity first; a conflict is reported with the
// per-day breakdown instead of a silent rejection so a human can
// decide. Forcing marks the booking with the capacity override flag.
// Acceptance also picks concrete spot numbers from the booking's pool
// when any are free.
func (s *Service) Accept(id, operator string, force bool) (*models.Booking, error) {
	var out *models.Booking
	err := s.kv.WithLock(store.BookingPrefix+id, func() error {
		b, err := s.repo.Get(id)
		if err != nil {
			return err
		}
		if b.Status != models.BookingNew {
			return fmt.Errorf("%w: cannot accept a %s booking", ErrInvalidTransition, b.Status)
		}

		all, err := s.repo.List()
		if err != nil {
			return err
		}
		if !force {
			fits, days := capacity.ForRange(all, b.ArrivalDate, b.DepartureDate, b.Cars(), b.CarKeys, b.ID)
			if !fits {
				return &CapacityConflictError{BookingID: b.ID, Days: days}
			}
		}

		snap := *b

		now := s.clk.Now()
		s.transition(b, models.BookingConfirmed, "accept", operator, "", now)
		if force {
			b.CapacityOverride = true
		}
		b.AssignedSpots = assignSpots(all, b)
		if err := s.repo.Save(b); err != nil {
			return err
		}
		s.undo.push(displayOperator(operator), &snap)

		if force && s.notifs != nil {
			if err := s.notifs.NotifyCapacityOverride(b, displayOperator(operator)); err != nil {
				log.Printf("Failed to send override notification: %v", err)
			}
		}

		out = b
		return nil
	})
	return out, err
}

// Decline rejects a new booking. A reason is mandatory.
func (s *Service) Decline(id, operator, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: decline reason is required", ErrValidation)
	}
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingNew {
			return fmt.Errorf("%w: cannot decline a %s booking", ErrInvalidTransition, b.Status)
		}
		now := s.clk.Now()
		s.transition(b, models.BookingDeclined, "decline", operator, reason, now)
		b.DeclinedAt = &now
		b.DeclinedBy = displayOperator(operator)
		b.DeclineReason = reason
		return nil
	})
}

// Cancel aborts a confirmed booking. Cancellation always frees
// capacity, so no capacity re-check happens here.
func (s *Service) Cancel(id, operator, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: cancel reason is required", ErrValidation)
	}
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, b.Status)
		}
		now := s.clk.Now()
		s.transition(b, models.BookingCancelled, "cancel", operator, reason, now)
		b.CancelledAt = &now
		b.CancelledBy = displayOperator(operator)
		b.CancelReason = reason
		return nil
	})
}

// MarkArrived records the car on the lot. The payment method travels
// with the transition: pay-on-leave parks the payment as pending,
// cash and card settle immediately.
func (s *Service) MarkArrived(id, operator string, method models.PaymentMethod) (*models.Booking, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: payment method must be cash, card or pay-on-leave", ErrValidation)
	}
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return fmt.Errorf("%w: cannot mark a %s booking as arrived", ErrInvalidTransition, b.Status)
		}
		now := s.clk.Now()
		s.transition(b, models.BookingArrived, "mark-arrived", operator, "", now)
		b.ArrivedAt = &now
		b.PaymentMethod = method
		if method == models.MethodPayOnLeave {
			b.PaymentStatus = models.PaymentPending
		} else {
			b.PaymentStatus = models.PaymentPaid
			b.PaidAt = &now
		}
		return nil
	})
}

// MarkNoShow records a confirmed booking that never arrived.
func (s *Service) MarkNoShow(id, operator, reason string) (*models.Booking, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: no-show reason is required", ErrValidation)
	}
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingConfirmed {
			return fmt.Errorf("%w: cannot mark a %s booking as no-show", ErrInvalidTransition, b.Status)
		}
		now := s.clk.Now()
		s.transition(b, models.BookingNoShow, "mark-no-show", operator, reason, now)
		b.NoShowAt = &now
		b.NoShowBy = displayOperator(operator)
		b.NoShowReason = reason
		return nil
	})
}

// MarkLate flags an arrived booking that stayed past departure. The
// original departure is frozen at the first marking; the surcharge
// grows from that fixed point from then on.
func (s *Service) MarkLate(id, operator string) (*models.Booking, error) {
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingArrived {
			return fmt.Errorf("%w: only arrived bookings can be marked late", ErrInvalidTransition)
		}
		now := s.clk.Now()
		s.transition(b, models.BookingArrived, "mark-late", operator, "", now)
		b.IsLate = true
		if b.LateDeparture == nil {
			b.LateDeparture = &models.LateDeparture{
				OriginalDepartureDate: b.DepartureDate,
				OriginalDepartureTime: b.DepartureTime,
			}
		}
		b.LateDeparture.Surcharge = LateSurcharge(now, b.LateDeparture.OriginalDepartureDate)
		return nil
	})
}

// Checkout completes the stay. A late booking requires the operator to
// confirm the (possibly adjusted) fee; a pending payment requires a
// method now. FinalPrice is frozen here.
func (s *Service) Checkout(id, operator string, confirmedLateFee *float64, method models.PaymentMethod) (*models.Booking, error) {
	return s.withBookingUndo(id, operator, func(b *models.Booking) error {
		if b.Status != models.BookingArrived {
			return fmt.Errorf("%w: cannot check out a %s booking", ErrInvalidTransition, b.Status)
		}
		if b.IsLate && confirmedLateFee == nil {
			return fmt.Errorf("%w: late fee must be confirmed before checkout", ErrValidation)
		}
		if b.PaymentStatus == models.PaymentPending && !models.ValidPaymentMethod(method) {
			return fmt.Errorf("%w: payment method required to settle a pending payment", ErrValidation)
		}

		now := s.clk.Now()
		s.transition(b, models.BookingCheckedOut, "checkout", operator, "", now)
		b.CheckedOutAt = &now
		b.CompletedBy = displayOperator(operator)

		final := b.TotalPrice
		if b.IsLate {
			final += *confirmedLateFee
			b.LateDeparture.Surcharge = *confirmedLateFee
		}
		b.FinalPrice = &final

		if b.PaymentStatus == models.PaymentPending {
			b.PaymentMethod = method
			b.PaymentStatus = models.PaymentPaid
			b.PaidAt = &now
		}
		return nil
	})
}

// Undo restores the operator's most recent pre-action snapshot of the
// booking. The audit history is append-only: the restored state keeps
// every entry recorded since and adds an "undo" entry on top.
func (s *Service) Undo(id, operator string) (*models.Booking, error) {
	var out *models.Booking
	err := s.kv.WithLock(store.BookingPrefix+id, func() error {
		b, err := s.repo.Get(id)
		if err != nil {
			return err
		}
		snap, ok := s.undo.pop(displayOperator(operator), id)
		if !ok {
			return ErrNothingToUndo
		}

		now := s.clk.Now()
		history := append(b.StatusHistory, models.StatusChange{
			From:      b.Status,
			To:        snap.Status,
			Action:    "undo",
			Timestamp: now,
			Operator:  displayOperator(operator),
		})

		restored := *snap
		restored.StatusHistory = history
		restored.UpdatedAt = now

		if err := s.repo.Save(&restored); err != nil {
			return err
		}
		out = &restored
		return nil
	})
	return out, err
}

// SetPaymentStatus records a payment-gateway outcome. Unlike the
// lifecycle transitions this touches payment fields only; the status
// machine is not involved.
func (s *Service) SetPaymentStatus(id string, status models.PaymentStatus, paidAt time.Time) (*models.Booking, error) {
	return s.withBooking(id, func(b *models.Booking) error {
		b.PaymentStatus = status
		if status == models.PaymentPaid {
			b.PaidAt = &paidAt
		}
		b.UpdatedAt = s.clk.Now()
		return nil
	})
}

// withBooking runs a transition under the booking's key lock so
// concurrent transitions on the same entity serialize. The write
// happens once, after every check passed; a failed transition leaves
// nothing behind.
func (s *Service) withBooking(id string, fn func(b *models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.kv.WithLock(store.BookingPrefix+id, func() error {
		b, err := s.repo.Get(id)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		if err := s.repo.Save(b); err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, err
}

// withBookingUndo is withBooking plus an undo snapshot for the
// operator. The snapshot is recorded only once the write succeeded; a
// transition that changed nothing must not cost an undo slot.
func (s *Service) withBookingUndo(id, operator string, fn func(b *models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.kv.WithLock(store.BookingPrefix+id, func() error {
		b, err := s.repo.Get(id)
		if err != nil {
			return err
		}
		snap := *b
		if err := fn(b); err != nil {
			return err
		}
		if err := s.repo.Save(b); err != nil {
			return err
		}
		s.undo.push(displayOperator(operator), &snap)
		out = b
		return nil
	})
	return out, err
}

// assignSpots picks spot numbers for the stay out of the booking's
// pool, skipping spots held by bookings that overlap its window in the
// same pool. A full pool yields nil; the booking is still accepted.
func assignSpots(all []models.Booking, b *models.Booking) []int {
	arrive, err1 := models.ParseDate(b.ArrivalDate)
	depart, err2 := models.ParseDate(b.DepartureDate)
	if err1 != nil || err2 != nil {
		return nil
	}
	occupied := make(map[int]bool)
	for i := range all {
		o := &all[i]
		if o.ID == b.ID || !o.Occupies() || o.CarKeys != b.CarKeys {
			continue
		}
		oa, e1 := models.ParseDate(o.ArrivalDate)
		od, e2 := models.ParseDate(o.DepartureDate)
		if e1 != nil || e2 != nil {
			continue
		}
		if od.Before(arrive) || oa.After(depart) {
			continue
		}
		for _, spot := range o.AssignedSpots {
			occupied[spot] = true
		}
	}
	pool := capacity.MaxRegular
	if b.CarKeys {
		pool = capacity.MaxKeysOverflow
	}
	return capacity.AssignSpots(occupied, pool, b.Cars())
}

// transition moves the booking to its next status and appends the
// audit entry. Entries are only ever appended, never rewritten.
func (s *Service) transition(b *models.Booking, to models.BookingStatus, action, operator, reason string, now time.Time) {
	b.StatusHistory = append(b.StatusHistory, models.StatusChange{
		From:      b.Status,
		To:        to,
		Action:    action,
		Timestamp: now,
		Operator:  displayOperator(operator),
		Reason:    reason,
	})
	b.Status = to
	b.UpdatedAt = now
}

func (s *Service) refreshSurcharge(b *models.Booking) {
	if b.IsLate && b.LateDeparture != nil && b.Status == models.BookingArrived {
		b.LateDeparture.Surcharge = LateSurcharge(s.clk.Now(), b.LateDeparture.OriginalDepartureDate)
	}
}

func validateWindow(b *models.Booking) error {
	return validateWindowFields(b.ArrivalDate, b.DepartureDate)
}

func validateWindowFields(arrivalDate, departureDate string) error {
	if arrivalDate == "" || departureDate == "" {
		return fmt.Errorf("%w: arrival and departure dates are required", ErrValidation)
	}
	arrive, err := models.ParseDate(arrivalDate)
	if err != nil {
		return fmt.Errorf("%w: bad arrival date", ErrValidation)
	}
	depart, err := models.ParseDate(departureDate)
	if err != nil {
		return fmt.Errorf("%w: bad departure date", ErrValidation)
	}
	if depart.Before(arrive) {
		return fmt.Errorf("%w: departure date cannot be before arrival date", ErrValidation)
	}
	return nil
}

func displayOperator(operator string) string {
	if operator == "" {
		return "system"
	}
	return operator
}
