package handlers

import (
	"context"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/payment"
	"github.com/danielgtaylor/huma/v2"
)

type PaymentHandler struct {
	svc         *booking.Service
	client      *payment.Client
	authHandler *auth.AuthHandler
}

func NewPaymentHandler(svc *booking.Service, client *payment.Client, authHandler *auth.AuthHandler) *PaymentHandler {
	return &PaymentHandler{svc: svc, client: client, authHandler: authHandler}
}

type InitiatePaymentRequest struct {
	auth.AuthInput
	Body struct {
		BookingID string `json:"booking_id" required:"true"`
	}
}

type InitiatePaymentResponse struct {
	Body struct {
		PaymentID   string `json:"payment_id"`
		RedirectURL string `json:"redirect_url"`
	}
}

func (h *PaymentHandler) HandleInitiate(ctx context.Context, input *InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	if h.client == nil {
		return nil, huma.Error503ServiceUnavailable("Payment gateway is not configured")
	}

	b, err := h.svc.Get(input.Body.BookingID)
	if err != nil {
		return nil, mapBookingError(err)
	}
	if b.PaymentStatus == models.PaymentPaid {
		return nil, huma.Error409Conflict("Booking is already paid")
	}

	paymentID, redirectURL, err := h.client.Initiate(ctx, b.ID, b.EffectivePrice(), b.CustomerName)
	if err != nil {
		return nil, huma.Error502BadGateway("Payment gateway error: " + err.Error())
	}

	res := &InitiatePaymentResponse{}
	res.Body.PaymentID = paymentID
	res.Body.RedirectURL = redirectURL
	return res, nil
}

type PaymentWebhookRequest struct {
	Body payment.WebhookPayload
}

type PaymentWebhookResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleWebhook receives the gateway's payment notification and maps
// it onto the booking's payment fields.
//
// SECURITY: the gateway's signature MUST be verified before trusting
// this payload in production. The reference deployment skipped it;
// wire the gateway's HMAC header check here before going live.
func (h *PaymentHandler) HandleWebhook(ctx context.Context, input *PaymentWebhookRequest) (*PaymentWebhookResponse, error) {
	if input.Body.BookingID == "" {
		return nil, huma.Error400BadRequest("booking_id is required")
	}

	var status models.PaymentStatus
	switch input.Body.Status {
	case "paid":
		status = models.PaymentPaid
	case "failed":
		status = models.PaymentFailed
	default:
		return nil, huma.Error400BadRequest("Unknown payment status: " + input.Body.Status)
	}

	updated, err := h.svc.SetPaymentStatus(input.Body.BookingID, status, time.Now())
	if err != nil {
		return nil, mapBookingError(err)
	}

	res := &PaymentWebhookResponse{}
	res.Body.Message = "Payment " + string(updated.PaymentStatus) + " recorded for " + updated.BookingCode
	return res, nil
}
