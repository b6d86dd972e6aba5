package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

type AcceptBookingRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator string `json:"operator,omitempty"`
		Force    bool   `json:"force,omitempty" doc:"Admin-only: accept past capacity, marking the booking as overridden"`
	}
}

func (h *BookingHandler) HandleAccept(ctx context.Context, input *AcceptBookingRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	if input.Body.Force && user.Role != models.RoleAdmin {
		return nil, huma.Error403Forbidden("Only admins can force-accept past capacity")
	}

	b, err := h.svc.Accept(input.ID, operatorName(input.Body.Operator, user), input.Body.Force)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type ReasonedTransitionRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator string `json:"operator,omitempty"`
		Reason   string `json:"reason" doc:"Mandatory explanation recorded in the audit trail" required:"true"`
	}
}

func (h *BookingHandler) HandleDecline(ctx context.Context, input *ReasonedTransitionRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.Decline(input.ID, operatorName(input.Body.Operator, user), input.Body.Reason)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

func (h *BookingHandler) HandleCancel(ctx context.Context, input *ReasonedTransitionRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.Cancel(input.ID, operatorName(input.Body.Operator, user), input.Body.Reason)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

func (h *BookingHandler) HandleMarkNoShow(ctx context.Context, input *ReasonedTransitionRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.MarkNoShow(input.ID, operatorName(input.Body.Operator, user), input.Body.Reason)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type MarkArrivedRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator      string               `json:"operator,omitempty"`
		PaymentMethod models.PaymentMethod `json:"payment_method" doc:"cash, card or pay-on-leave" required:"true"`
	}
}

func (h *BookingHandler) HandleMarkArrived(ctx context.Context, input *MarkArrivedRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.MarkArrived(input.ID, operatorName(input.Body.Operator, user), input.Body.PaymentMethod)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type MarkLateRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator string `json:"operator,omitempty"`
	}
}

func (h *BookingHandler) HandleMarkLate(ctx context.Context, input *MarkLateRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.MarkLate(input.ID, operatorName(input.Body.Operator, user))
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type CheckoutRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator         string               `json:"operator,omitempty"`
		ConfirmedLateFee *float64             `json:"confirmed_late_fee,omitempty" doc:"Required when the booking is late; may be operator-adjusted"`
		PaymentMethod    models.PaymentMethod `json:"payment_method,omitempty" doc:"Required when the payment is still pending"`
	}
}

func (h *BookingHandler) HandleCheckout(ctx context.Context, input *CheckoutRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.Checkout(input.ID, operatorName(input.Body.Operator, user), input.Body.ConfirmedLateFee, input.Body.PaymentMethod)
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}

type UndoRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		Operator string `json:"operator,omitempty"`
	}
}

func (h *BookingHandler) HandleUndo(ctx context.Context, input *UndoRequest) (*BookingResponse, error) {
	user, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings)
	if err != nil {
		return nil, err
	}
	b, err := h.svc.Undo(input.ID, operatorName(input.Body.Operator, user))
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &BookingResponse{Body: *b}, nil
}
