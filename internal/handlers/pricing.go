package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/pricing"
	"github.com/danielgtaylor/huma/v2"
)

type PricingHandler struct {
	store       *pricing.Store
	engine      *pricing.Engine
	authHandler *auth.AuthHandler
}

func NewPricingHandler(store *pricing.Store, engine *pricing.Engine, authHandler *auth.AuthHandler) *PricingHandler {
	return &PricingHandler{store: store, engine: engine, authHandler: authHandler}
}

type GetPricingRequest struct {
	auth.AuthInput
}

type PricingResponse struct {
	Body models.PricingConfig
}

func (h *PricingHandler) HandleGet(ctx context.Context, input *GetPricingRequest) (*PricingResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	cfg, err := h.store.Load()
	if err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return &PricingResponse{Body: *cfg}, nil
}

type UpdatePricingRequest struct {
	auth.AuthInput
	Body struct {
		DailyPrices    map[int]float64 `json:"daily_prices" doc:"Flat price per stay of exactly N days, N in 1..10" required:"true"`
		MidRangeRate   float64         `json:"mid_range_rate" required:"true"`
		MidRangeMaxDay int             `json:"mid_range_max_day"`
		LongTermRate   float64         `json:"long_term_rate" required:"true"`
	}
}

// HandleUpdate replaces the tier table. The bumped version invalidates
// every cached price downstream.
func (h *PricingHandler) HandleUpdate(ctx context.Context, input *UpdatePricingRequest) (*PricingResponse, error) {
	user, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, huma.Error403Forbidden("Only admins can change pricing")
	}

	for day := 1; day <= 10; day++ {
		if _, ok := input.Body.DailyPrices[day]; !ok {
			return nil, huma.Error400BadRequest("daily_prices must cover days 1 through 10")
		}
	}
	maxDay := input.Body.MidRangeMaxDay
	if maxDay == 0 {
		maxDay = 30
	}
	if maxDay <= 10 {
		return nil, huma.Error400BadRequest("mid_range_max_day must be greater than 10")
	}

	cfg, err := h.store.Update(&models.PricingConfig{
		DailyPrices:    input.Body.DailyPrices,
		MidRangeRate:   input.Body.MidRangeRate,
		MidRangeMaxDay: maxDay,
		LongTermRate:   input.Body.LongTermRate,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return &PricingResponse{Body: *cfg}, nil
}
