package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/revenue"
	"github.com/danielgtaylor/huma/v2"
)

type RevenueHandler struct {
	svc         *booking.Service
	clk         clock.Clock
	authHandler *auth.AuthHandler
}

func NewRevenueHandler(svc *booking.Service, clk clock.Clock, authHandler *auth.AuthHandler) *RevenueHandler {
	return &RevenueHandler{svc: svc, clk: clk, authHandler: authHandler}
}

type RevenueReportRequest struct {
	auth.AuthInput
	From string `query:"from" doc:"First departure date included (YYYY-MM-DD)" required:"true"`
	To   string `query:"to" doc:"Last departure date included (YYYY-MM-DD)" required:"true"`
}

type RevenueReportResponse struct {
	Body revenue.Report
}

// HandleReport rolls up realized and projected revenue over a
// departure-date window. Admins additionally see paid-but-not-yet-
// checked-out bookings counted as realized.
func (h *RevenueHandler) HandleReport(ctx context.Context, input *RevenueReportRequest) (*RevenueReportResponse, error) {
	user, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	from, err := models.ParseDate(input.From)
	if err != nil {
		return nil, huma.Error400BadRequest("Bad from date: " + input.From)
	}
	to, err := models.ParseDate(input.To)
	if err != nil {
		return nil, huma.Error400BadRequest("Bad to date: " + input.To)
	}
	if to.Before(from) {
		return nil, huma.Error400BadRequest("to must not be before from")
	}

	bookings, err := h.svc.List()
	if err != nil {
		return nil, mapBookingError(err)
	}

	adminView := user.Role == models.RoleAdmin
	report := revenue.Aggregate(bookings, from, to, h.clk.Now(), adminView)
	return &RevenueReportResponse{Body: *report}, nil
}
