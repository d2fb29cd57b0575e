package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

// TestStoreIntegration exercises the store against a live Postgres database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL, 15*time.Minute)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("storetest_%d@example.com", suffix)

	user, err := store.CreateUser(ctx, models.User{
		Username:     fmt.Sprintf("storetest_%d", suffix),
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 || user.Role != models.RoleUser {
		t.Fatalf("create user returned %+v", user)
	}

	_, err = store.CreateUser(ctx, models.User{
		Username:     "dup",
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleUser,
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email: want ErrAlreadyExists, got %v", err)
	}

	refresh := "refresh-" + email
	if err := store.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}
	reloaded, err := store.UserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.RefreshToken == nil || *reloaded.RefreshToken != refresh {
		t.Fatalf("refresh token not persisted: %+v", reloaded.RefreshToken)
	}

	birthday := time.Now().AddDate(-30, 0, 3)
	contact, err := store.CreateContact(ctx, models.Contact{
		UserID:    user.ID,
		FirstName: "Ann",
		LastName:  "Smith",
		Email:     fmt.Sprintf("ann_%d@example.com", suffix),
		Phone:     fmt.Sprintf("+1555%07d", suffix%1_000_0000),
		Birthday:  &birthday,
	})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	listed, err := store.ListContacts(ctx, user.ID, storage.ContactFilter{Limit: 10, DaysToBirthday: 7})
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	found := false
	for _, c := range listed {
		if c.ID == contact.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("contact %d missing from birthday window listing", contact.ID)
	}

	_, err = store.CreateContact(ctx, models.Contact{
		UserID:    user.ID,
		FirstName: "Ann",
		LastName:  "Smith",
		Email:     contact.Email,
		Phone:     contact.Phone,
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate contact: want ErrAlreadyExists, got %v", err)
	}

	code, err := store.CreateTempCode(ctx, email, "Request reset password")
	if err != nil {
		t.Fatalf("create temp code: %v", err)
	}
	if len(code.Code) != 6 {
		t.Fatalf("temp code length = %d", len(code.Code))
	}
	if err := store.ConsumeTempCode(ctx, email, code.Code); err != nil {
		t.Fatalf("consume temp code: %v", err)
	}
	if err := store.ConsumeTempCode(ctx, email, code.Code); !errors.Is(err, storage.ErrCodeUsed) {
		t.Fatalf("reused temp code: want ErrCodeUsed, got %v", err)
	}

	if err := store.DeleteContact(ctx, user.ID, contact.ID); err != nil {
		t.Fatalf("delete contact: %v", err)
	}

	t.Logf("store integration passed for user %s (id=%d)", email, user.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
