package models

import (
	"time"
)

// DateLayout is the calendar-date format used everywhere in the API.
// Dates and times are local to the facility; no timezone conversion.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type BookingStatus string

const (
	BookingNew        BookingStatus = "new"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingArrived    BookingStatus = "arrived"
	BookingCheckedOut BookingStatus = "checked-out"
	BookingNoShow     BookingStatus = "no-show"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDeclined   BookingStatus = "declined"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCheckedOut, BookingNoShow, BookingCancelled, BookingDeclined:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentManual  PaymentStatus = "manual"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "cash"
	MethodCard       PaymentMethod = "card"
	MethodPayOnLeave PaymentMethod = "pay-on-leave"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	return m == MethodCash || m == MethodCard || m == MethodPayOnLeave
}

// StatusChange is one append-only audit entry. Entries are never
// mutated or removed once recorded.
type StatusChange struct {
	From      BookingStatus `json:"from"`
	To        BookingStatus `json:"to"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	Operator  string        `json:"operator"`
	Reason    string        `json:"reason,omitempty"`
}

// Invoice holds the optional billing block requested by companies.
type Invoice struct {
	CompanyName string `json:"company_name"`
	Owner       string `json:"owner"`
	TaxNumber   string `json:"tax_number"`
	HasVAT      bool   `json:"has_vat"`
	VATNumber   string `json:"vat_number,omitempty"`
	City        string `json:"city"`
	Address     string `json:"address"`
}

// LateDeparture is set once a vehicle is marked late. The original
// departure fields are frozen at that moment and stay fixed so the
// surcharge always grows from the same reference point.
type LateDeparture struct {
	OriginalDepartureDate string  `json:"original_departure_date"`
	OriginalDepartureTime string  `json:"original_departure_time"`
	Surcharge             float64 `json:"surcharge"`
}

type Booking struct {
	ID          string `json:"id"`
	BookingCode string `json:"booking_code"`

	ArrivalDate   string `json:"arrival_date"`
	ArrivalTime   string `json:"arrival_time"`
	DepartureDate string `json:"departure_date"`
	DepartureTime string `json:"departure_time"`

	NumberOfCars int  `json:"number_of_cars"`
	CarKeys      bool `json:"car_keys"`

	CustomerName   string   `json:"customer_name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	LicensePlates  []string `json:"license_plates"`
	PassengerCount int      `json:"passenger_count"`

	TotalPrice    float64       `json:"total_price"`
	FinalPrice    *float64      `json:"final_price,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	DiscountCode  string        `json:"discount_code,omitempty"`

	Invoice *Invoice `json:"invoice,omitempty"`

	Status           BookingStatus `json:"status"`
	CapacityOverride bool          `json:"capacity_override"`

	// AssignedSpots is the best-effort spot reservation picked at
	// accept time. Empty when the pool was full; never a hard
	// constraint.
	AssignedSpots []int `json:"assigned_spots,omitempty"`

	IsLate        bool           `json:"is_late"`
	LateDeparture *LateDeparture `json:"late_departure,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ArrivedAt    *time.Time `json:"arrived_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	NoShowAt     *time.Time `json:"no_show_at,omitempty"`
	DeclinedAt   *time.Time `json:"declined_at,omitempty"`

	CancelledBy string `json:"cancelled_by,omitempty"`
	NoShowBy    string `json:"no_show_by,omitempty"`
	DeclinedBy  string `json:"declined_by,omitempty"`
	CompletedBy string `json:"completed_by,omitempty"`

	CancelReason  string `json:"cancel_reason,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
	NoShowReason  string `json:"no_show_reason,omitempty"`

	StatusHistory []StatusChange `json:"status_history"`
}

// Occupies reports whether the booking takes up spots at all. Only
// confirmed and arrived bookings count toward capacity.
func (b *Booking) Occupies() bool {
	return b.Status == BookingConfirmed || b.Status == BookingArrived
}

// Cars returns the car count with the legacy default of 1 applied.
func (b *Booking) Cars() int {
	if b.NumberOfCars < 1 {
		return 1
	}
	return b.NumberOfCars
}

// EffectivePrice is the amount revenue reporting uses: the finalized
// price when checkout has set one, the quoted total otherwise.
func (b *Booking) EffectivePrice() float64 {
	if b.FinalPrice != nil {
		return *b.FinalPrice
	}
	return b.TotalPrice
}

// ParseDate parses a calendar-date field value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
