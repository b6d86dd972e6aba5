package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

type BookingHandler struct {
	svc         *booking.Service
	authHandler *auth.AuthHandler
}

func NewBookingHandler(svc *booking.Service, authHandler *auth.AuthHandler) *BookingHandler {
	return &BookingHandler{svc: svc, authHandler: authHandler}
}

// BookingFields is the editable subset shared by create and update.
type BookingFields struct {
	ArrivalDate    string          `json:"arrival_date" doc:"Arrival date (YYYY-MM-DD)" required:"true"`
	ArrivalTime    string          `json:"arrival_time" doc:"Arrival time (HH:MM)"`
	DepartureDate  string          `json:"departure_date" doc:"Departure date (YYYY-MM-DD)" required:"true"`
	DepartureTime  string          `json:"departure_time" doc:"Departure time (HH:MM)"`
	NumberOfCars   int             `json:"number_of_cars,omitempty" doc:"Cars in the party, default 1"`
	CarKeys        bool            `json:"car_keys,omitempty" doc:"Keys left for reparking (enables overflow pool)"`
	CustomerName   string          `json:"customer_name" required:"true"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	LicensePlates  []string        `json:"license_plates" doc:"1 to 5 plates" required:"true"`
	PassengerCount int             `json:"passenger_count,omitempty"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	Invoice        *models.Invoice `json:"invoice,omitempty"`
}

func (f *BookingFields) toModel() *models.Booking {
	return &models.Booking{
		ArrivalDate:    f.ArrivalDate,
		ArrivalTime:    f.ArrivalTime,
		DepartureDate:  f.DepartureDate,
		DepartureTime:  f.DepartureTime,
		NumberOfCars:   f.NumberOfCars,
		CarKeys:        f.CarKeys,
		CustomerName:   f.CustomerName,
		Email:          f.Email,
		Phone:          f.Phone,
		LicensePlates:  f.LicensePlates,
		PassengerCount: f.PassengerCount,
		DiscountCode:   f.DiscountCode,
		Invoice:        f.Invoice,
	}
}

type CreateBookingRequest struct {
	auth.AuthInput
	Body struct {
		BookingFields
		Operator string `json:"operator,omitempty" doc:"Operator display name for audit attribution"`
	}
}

type BookingResponse struct {
	Body models.Booking
}

func (h *BookingHandler) HandleCreate(ctx context.Context, input *CreateBookingRequest) (*BookingResponse, error) {
	user, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.Create(input.Body.toModel(), operatorName(input.Body.Operator, user))
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type ListBookingsRequest struct {
	auth.AuthInput
	Status string `query:"status" doc:"Filter by lifecycle status"`
}

type ListBookingsResponse struct {
	Body []models.Booking
}

func (h *BookingHandler) HandleList(ctx context.Context, input *ListBookingsRequest) (*ListBookingsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	bookings, err := h.svc.List()
	if err != nil {
		return nil, mapBookingError(err)
	}
	if input.Status != "" {
		filtered := bookings[:0]
		for _, b := range bookings {
			if string(b.Status) == input.Status {
				filtered = append(filtered, b)
			}
		}
		bookings = filtered
	}
	return &ListBookingsResponse{Body: bookings}, nil
}

type GetBookingRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *BookingHandler) HandleGet(ctx context.Context, input *GetBookingRequest) (*BookingResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	b, err := h.svc.Get(input.ID)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type UpdateBookingRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		BookingFields
		CapacityOverride bool   `json:"capacity_override,omitempty" doc:"Clearable only by an explicit edit"`
		Operator         string `json:"operator,omitempty"`
	}
}

func (h *BookingHandler) HandleUpdate(ctx context.Context, input *UpdateBookingRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}

	in := input.Body.toModel()
	in.CapacityOverride = input.Body.CapacityOverride
	b, err := h.svc.Update(input.ID, in, operatorName(input.Body.Operator, user))
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type DeleteBookingRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *BookingHandler) HandleDelete(ctx context.Context, input *DeleteBookingRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermDeleteBookings); err != nil {
		return nil, err
	}
	if err := h.svc.Delete(input.ID); err != nil {
		return nil, mapBookingError(err)
	}
	return nil, nil
}

// operatorName prefers the explicit audit field, falling back to the
// authenticated account's display name.
func operatorName(explicit string, user *models.User) string {
	if explicit != "" {
		return explicit
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.Username
}
