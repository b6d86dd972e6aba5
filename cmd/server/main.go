package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/booking"
	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/config"
	"github.com/alexzinovi/Skyparking-sub000/internal/database"
	"github.com/alexzinovi/Skyparking-sub000/internal/discount"
	"github.com/alexzinovi/Skyparking-sub000/internal/handlers"
	"github.com/alexzinovi/Skyparking-sub000/internal/notifier"
	"github.com/alexzinovi/Skyparking-sub000/internal/payment"
	"github.com/alexzinovi/Skyparking-sub000/internal/pricing"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)
	kv := store.NewGormKV(db)

	// Initialize Notifier
	var notifs notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			notifs = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Services
	clk := clock.System
	pricingStore := pricing.NewStore(kv)
	engine := pricing.NewEngine()
	bookingService := booking.NewService(kv, engine, pricingStore, clk, notifs)
	discountEngine := discount.NewEngine(kv, clk)
	paymentClient := payment.NewClient(cfg)

	// Initialize Handlers
	users := auth.NewUserRepository(kv)
	users.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	authHandler := auth.NewAuthHandler(cfg, users)

	h := handlers.Handlers{
		Auth:     authHandler,
		Booking:  handlers.NewBookingHandler(bookingService, authHandler),
		Capacity: handlers.NewCapacityHandler(bookingService, clk, authHandler),
		Discount: handlers.NewDiscountHandler(discountEngine, authHandler),
		Pricing:  handlers.NewPricingHandler(pricingStore, engine, authHandler),
		User:     handlers.NewUserHandler(users, authHandler),
		Settings: handlers.NewSettingsHandler(kv, authHandler),
		Revenue:  handlers.NewRevenueHandler(bookingService, clk, authHandler),
		Payment:  handlers.NewPaymentHandler(bookingService, paymentClient, authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, h)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
