package handlers

import (
	"context"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/discount"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
)

type DiscountHandler struct {
	engine      *discount.Engine
	authHandler *auth.AuthHandler
}

func NewDiscountHandler(engine *discount.Engine, authHandler *auth.AuthHandler) *DiscountHandler {
	return &DiscountHandler{engine: engine, authHandler: authHandler}
}

type ListDiscountsRequest struct {
	auth.AuthInput
}

type ListDiscountsResponse struct {
	Body []models.DiscountCode
}

func (h *DiscountHandler) HandleList(ctx context.Context, input *ListDiscountsRequest) (*ListDiscountsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	codes, err := h.engine.List()
	if err != nil {
		return nil, mapDiscountError(err)
	}
	return &ListDiscountsResponse{Body: codes}, nil
}

type GetDiscountRequest struct {
	auth.AuthInput
	Code string `path:"code"`
}

func (h *DiscountHandler) HandleGet(ctx context.Context, input *GetDiscountRequest) (*DiscountResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	dc, err := h.engine.Get(input.Code)
	if err != nil {
		return nil, mapDiscountError(err)
	}
	return &DiscountResponse{Body: *dc}, nil
}

type DiscountBody struct {
	Code          string              `json:"code" required:"true"`
	DiscountType  models.DiscountType `json:"discount_type" doc:"percentage or fixed" required:"true"`
	DiscountValue float64             `json:"discount_value" required:"true"`
	IsActive      bool                `json:"is_active"`
	MaxUsages     *int                `json:"max_usages,omitempty"`
	ExpiryDate    *string             `json:"expiry_date,omitempty" doc:"YYYY-MM-DD"`
}

type CreateDiscountRequest struct {
	auth.AuthInput
	Body DiscountBody
}

type DiscountResponse struct {
	Body models.DiscountCode
}

func (h *DiscountHandler) HandleCreate(ctx context.Context, input *CreateDiscountRequest) (*DiscountResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings); err != nil {
		return nil, err
	}
	dc := &models.DiscountCode{
		Code:          input.Body.Code,
		DiscountType:  input.Body.DiscountType,
		DiscountValue: input.Body.DiscountValue,
		IsActive:      input.Body.IsActive,
		MaxUsages:     input.Body.MaxUsages,
		ExpiryDate:    input.Body.ExpiryDate,
	}
	if err := h.engine.Save(dc); err != nil {
		return nil, mapDiscountError(err)
	}
	return &DiscountResponse{Body: *dc}, nil
}

type UpdateDiscountRequest struct {
	auth.AuthInput
	Code string `path:"code"`
	Body DiscountBody
}

func (h *DiscountHandler) HandleUpdate(ctx context.Context, input *UpdateDiscountRequest) (*DiscountResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings); err != nil {
		return nil, err
	}
	existing, err := h.engine.Get(input.Code)
	if err != nil {
		return nil, mapDiscountError(err)
	}
	existing.DiscountType = input.Body.DiscountType
	existing.DiscountValue = input.Body.DiscountValue
	existing.IsActive = input.Body.IsActive
	existing.MaxUsages = input.Body.MaxUsages
	existing.ExpiryDate = input.Body.ExpiryDate
	if err := h.engine.Save(existing); err != nil {
		return nil, mapDiscountError(err)
	}
	return &DiscountResponse{Body: *existing}, nil
}

type DeleteDiscountRequest struct {
	auth.AuthInput
	Code string `path:"code"`
}

func (h *DiscountHandler) HandleDelete(ctx context.Context, input *DeleteDiscountRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermEditBookings); err != nil {
		return nil, err
	}
	if err := h.engine.Delete(input.Code); err != nil {
		return nil, mapDiscountError(err)
	}
	return nil, nil
}

type ApplyDiscountRequest struct {
	auth.AuthInput
	Body struct {
		Code  string  `json:"code" required:"true"`
		Price float64 `json:"price" required:"true"`
	}
}

type ApplyDiscountResponse struct {
	Body struct {
		OK       bool    `json:"ok"`
		NewPrice float64 `json:"new_price"`
	}
}

// HandleApply redeems a code against a price. Redemption counts the
// usage; validation failures (unknown, inactive, expired, exhausted)
// come back as 404/409 without consuming anything.
func (h *DiscountHandler) HandleApply(ctx context.Context, input *ApplyDiscountRequest) (*ApplyDiscountResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}
	newPrice, err := h.engine.Apply(input.Body.Code, input.Body.Price)
	if err != nil {
		return nil, mapDiscountError(err)
	}
	res := &ApplyDiscountResponse{}
	res.Body.OK = true
	res.Body.NewPrice = newPrice
	return res, nil
}
