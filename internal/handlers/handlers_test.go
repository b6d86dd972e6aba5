package handlers

import (
	"context"
	"testing"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/clock"
	"github.com/alexzinovi/Skyparking-sub000/internal/config"
	"github.com/alexzinovi/Skyparking-sub000/internal/discount"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/alexzinovi/Skyparking-sub000/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testAuthSetup(t *testing.T) (store.KV, *auth.AuthHandler, *auth.UserRepository, string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&store.Record{}); err != nil {
		t.Fatalf("failed to auto migrate: %v", err)
	}
	kv := store.NewGormKV(db)
	users := auth.NewUserRepository(kv)

	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	admin := &models.User{
		ID:           auth.NewUserID(),
		Username:     "boss",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Save(admin); err != nil {
		t.Fatalf("Save: %v", err)
	}

	handler := auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, users)
	token, err := handler.GenerateToken(admin.ID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return kv, handler, users, "auth_token=" + token
}

func TestDiscountHandleGet(t *testing.T) {
	kv, authHandler, _, cookie := testAuthSetup(t)
	engine := discount.NewEngine(kv, clock.System)
	if err := engine.Save(&models.DiscountCode{
		Code: "SUMMER20", DiscountType: models.DiscountPercentage,
		DiscountValue: 20, IsActive: true,
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := NewDiscountHandler(engine, authHandler)

	t.Run("Found", func(t *testing.T) {
		input := &GetDiscountRequest{Code: "summer20"}
		input.Cookie = cookie
		resp, err := h.HandleGet(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleGet returned error: %v", err)
		}
		if resp.Body.Code != "SUMMER20" || resp.Body.DiscountValue != 20 {
			t.Errorf("bad body: %+v", resp.Body)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		input := &GetDiscountRequest{Code: "nope"}
		input.Cookie = cookie
		if _, err := h.HandleGet(context.Background(), input); err == nil {
			t.Fatal("expected error for unknown code, got nil")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		input := &GetDiscountRequest{Code: "SUMMER20"}
		if _, err := h.HandleGet(context.Background(), input); err == nil {
			t.Fatal("expected error without a cookie, got nil")
		}
	})
}

func TestUserHandleGet(t *testing.T) {
	_, authHandler, users, cookie := testAuthSetup(t)
	target := &models.User{
		ID:           auth.NewUserID(),
		Username:     "op",
		PasswordHash: "not-telling",
		Role:         models.RoleOperator,
		IsActive:     true,
	}
	if err := users.Save(target); err != nil {
		t.Fatalf("Save: %v", err)
	}
	h := NewUserHandler(users, authHandler)

	t.Run("Found", func(t *testing.T) {
		input := &GetUserRequest{ID: target.ID}
		input.Cookie = cookie
		resp, err := h.HandleGet(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleGet returned error: %v", err)
		}
		if resp.Body.Username != "op" {
			t.Errorf("expected username op, got %s", resp.Body.Username)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		input := &GetUserRequest{ID: "no-such-user"}
		input.Cookie = cookie
		if _, err := h.HandleGet(context.Background(), input); err == nil {
			t.Fatal("expected error for unknown id, got nil")
		}
	})

	t.Run("OperatorForbidden", func(t *testing.T) {
		opToken, _ := authHandler.GenerateToken(target.ID)
		input := &GetUserRequest{ID: target.ID}
		input.Cookie = "auth_token=" + opToken
		if _, err := h.HandleGet(context.Background(), input); err == nil {
			t.Fatal("expected error for an operator without manage_users, got nil")
		}
	})
}
