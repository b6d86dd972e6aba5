package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/capacity"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
	"github.com/danielgtaylor/huma/v2"
)

type SettingsHandler struct {
	kv          store.KV
	authHandler *auth.AuthHandler
}

func NewSettingsHandler(kv store.KV, authHandler *auth.AuthHandler) *SettingsHandler {
	return &SettingsHandler{kv: kv, authHandler: authHandler}
}

type GetSettingsRequest struct {
	auth.AuthInput
}

type SettingsResponse struct {
	Body models.Settings
}

func (h *SettingsHandler) HandleGet(ctx context.Context, input *GetSettingsRequest) (*SettingsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Cookie); err != nil {
		return nil, err
	}

	settings := models.Settings{
		FacilityName: "SkyParking",
		MaxRegular:   capacity.MaxRegular,
		MaxKeys:      capacity.MaxKeysOverflow,
	}
	raw, err := h.kv.Get(store.SettingsKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	if err == nil {
		if err := json.Unmarshal(raw, &settings); err != nil {
			return nil, huma.Error500InternalServerError("Corrupt settings record")
		}
	}
	// Limits are informational; the capacity package owns them.
	settings.MaxRegular = capacity.MaxRegular
	settings.MaxKeys = capacity.MaxKeysOverflow
	return &SettingsResponse{Body: settings}, nil
}

type UpdateSettingsRequest struct {
	auth.AuthInput
	Body struct {
		FacilityName string `json:"facility_name"`
		ContactEmail string `json:"contact_email"`
		ContactPhone string `json:"contact_phone"`
		Address      string `json:"address"`
	}
}

func (h *SettingsHandler) HandleUpdate(ctx context.Context, input *UpdateSettingsRequest) (*SettingsResponse, error) {
	user, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, huma.Error403Forbidden("Only admins can change settings")
	}

	settings := models.Settings{
		FacilityName: input.Body.FacilityName,
		ContactEmail: input.Body.ContactEmail,
		ContactPhone: input.Body.ContactPhone,
		Address:      input.Body.Address,
		MaxRegular:   capacity.MaxRegular,
		MaxKeys:      capacity.MaxKeysOverflow,
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, huma.Error500InternalServerError("Encode error")
	}
	if err := h.kv.Set(store.SettingsKey, raw); err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return &SettingsResponse{Body: settings}, nil
}
