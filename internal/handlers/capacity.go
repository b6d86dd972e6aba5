package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/capacity"
	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

type CapacityHandler struct {
	svc         *booking.Service
	clk         clock.Clock
	authHandler *auth.AuthHandler
}

func NewCapacityHandler(svc *booking.Service, clk clock.Clock, authHandler *auth.AuthHandler) *CapacityHandler {
	return &CapacityHandler{svc: svc, clk: clk, authHandler: authHandler}
}

type CapacityForDateRequest struct {
	auth.AuthInput
	Date      string `query:"date" doc:"Date to inspect (YYYY-MM-DD); defaults to today"`
	ExcludeID string `query:"exclude_id" doc:"Booking id to leave out, for edit previews"`
}

type CapacityForDateResponse struct {
	Body capacity.Snapshot
}

func (h *CapacityHandler) HandleForDate(ctx context.Context, input *CapacityForDateRequest) (*CapacityForDateResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	date := input.Date
	if date == "" {
		date = h.clk.Now().Format(models.DateLayout)
	}
	if _, err := models.ParseDate(date); err != nil {
		return nil, huma.Error400BadRequest("Bad date: " + input.Date)
	}

	bookings, err := h.svc.List()
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &CapacityForDateResponse{Body: capacity.ForDate(bookings, date, input.ExcludeID)}, nil
}

type CapacityOverviewRequest struct {
	auth.AuthInput
	Start string `query:"start" doc:"First date of the window; defaults to today"`
	Days  int    `query:"days" doc:"Window length, default 14" minimum:"1" maximum:"60"`
}

type CapacityOverviewResponse struct {
	Body []capacity.Snapshot
}

// HandleOverview serves the rolling dashboard. Note this view counts
// the departure day as free (half-open interval), unlike the per-date
// detail above.
func (h *CapacityHandler) HandleOverview(ctx context.Context, input *CapacityOverviewRequest) (*CapacityOverviewResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	start := clock.Midnight(h.clk.Now())
	if input.Start != "" {
		parsed, err := models.ParseDate(input.Start)
		if err != nil {
			return nil, huma.Error400BadRequest("Bad start date: " + input.Start)
		}
		start = parsed
	}
	days := input.Days
	if days == 0 {
		days = 14
	}

	bookings, err := h.svc.List()
	if err != nil {
		return nil, mapBookingError(err)
	}
	return &CapacityOverviewResponse{Body: capacity.Overview(bookings, start, days)}, nil
}
