package handlers

import (
	"net/http"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth     *auth.AuthHandler
	Booking  *BookingHandler
	Capacity *CapacityHandler
	Discount *DiscountHandler
	Pricing  *PricingHandler
	User     *UserHandler
	Settings *SettingsHandler
	Revenue  *RevenueHandler
	Payment  *PaymentHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("SkyParking API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	huma.Post(api, "/auth/login", h.Auth.HandleLogin)
	huma.Post(api, "/payments/webhook", h.Payment.HandleWebhook)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}

	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	huma.Post(api, "/bookings", h.Booking.HandleCreate, secured)
	huma.Get(api, "/bookings", h.Booking.HandleList, secured)
	huma.Get(api, "/bookings/{id}", h.Booking.HandleGet, secured)
	huma.Put(api, "/bookings/{id}", h.Booking.HandleUpdate, secured)
	huma.Delete(api, "/bookings/{id}", h.Booking.HandleDelete, secured)

	huma.Put(api, "/bookings/{id}/accept", h.Booking.HandleAccept, secured)
	huma.Put(api, "/bookings/{id}/decline", h.Booking.HandleDecline, secured)
	huma.Put(api, "/bookings/{id}/cancel", h.Booking.HandleCancel, secured)
	huma.Put(api, "/bookings/{id}/mark-arrived", h.Booking.HandleMarkArrived, secured)
	huma.Put(api, "/bookings/{id}/mark-no-show", h.Booking.HandleMarkNoShow, secured)
	huma.Put(api, "/bookings/{id}/mark-late", h.Booking.HandleMarkLate, secured)
	huma.Put(api, "/bookings/{id}/checkout", h.Booking.HandleCheckout, secured)
	huma.Put(api, "/bookings/{id}/undo", h.Booking.HandleUndo, secured)

	huma.Get(api, "/capacity", h.Capacity.HandleForDate, secured)
	huma.Get(api, "/capacity/overview", h.Capacity.HandleOverview, secured)

	huma.Get(api, "/discounts", h.Discount.HandleList, secured)
	huma.Post(api, "/discounts", h.Discount.HandleCreate, secured)
	huma.Get(api, "/discounts/{code}", h.Discount.HandleGet, secured)
	huma.Put(api, "/discounts/{code}", h.Discount.HandleUpdate, secured)
	huma.Delete(api, "/discounts/{code}", h.Discount.HandleDelete, secured)
	huma.Post(api, "/discounts/apply", h.Discount.HandleApply, secured)

	huma.Get(api, "/pricing", h.Pricing.HandleGet, secured)
	huma.Put(api, "/pricing", h.Pricing.HandleUpdate, secured)

	huma.Get(api, "/users", h.User.HandleList, secured)
	huma.Post(api, "/users", h.User.HandleCreate, secured)
	huma.Get(api, "/users/{id}", h.User.HandleGet, secured)
	huma.Put(api, "/users/{id}", h.User.HandleUpdate, secured)
	huma.Delete(api, "/users/{id}", h.User.HandleDelete, secured)

	huma.Get(api, "/settings", h.Settings.HandleGet, secured)
	huma.Put(api, "/settings", h.Settings.HandleUpdate, secured)

	huma.Get(api, "/reports/revenue", h.Revenue.HandleReport, secured)

	huma.Post(api, "/payments/initiate", h.Payment.HandleInitiate, secured)
}
