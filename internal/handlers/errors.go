package handlers

import (
	"errors"

	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/discount"
	"github.com/danielgtaylor/huma/v2"
)

// mapBookingError translates service errors into the HTTP taxonomy:
// validation 400, missing entity 404, conflicts 409 (with the per-day
// capacity breakdown attached when there is one), anything else 500.
func mapBookingError(err error) error {
	var conflict *booking.CapacityConflictError
	if errors.As(err, &conflict) {
		details := make([]error, 0, len(conflict.Days))
		for _, d := range conflict.Days {
			if d.WouldFit {
				continue
			}
			details = append(details, &huma.ErrorDetail{
				Message:  "capacity exceeded",
				Location: d.Date,
				Value:    d,
			})
		}
		return huma.Error409Conflict(conflict.Error(), details...)
	}
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, booking.ErrValidation):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, booking.ErrNothingToUndo):
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError("Storage error: " + err.Error())
	}
}

func mapDiscountError(err error) error {
	switch {
	case errors.Is(err, discount.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, discount.ErrInactive),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrExhausted):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, discount.ErrInvalid):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("Storage error: " + err.Error())
	}
}
