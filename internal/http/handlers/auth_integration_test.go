package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/feedback-hub/internal/auth"
	"github.com/hongminglow/feedback-hub/internal/models/dto"
	"github.com/hongminglow/feedback-hub/internal/storage/postgres"
)

// TestAuthIntegration exercises the register/login endpoints against a live Postgres.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), "feedback-hub-it", time.Hour)
	service, err := auth.NewService(store, tokens, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("init auth service: %v", err)
	}

	router := chi.NewRouter()
	router.Route("/auth", NewAuthHandler(service, slog.New(slog.DiscardHandler)).MountRoutes)

	ts := httptest.NewServer(router)
	defer ts.Close()

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	var registered dto.RegisterResponse
	postJSON(t, ts.URL+"/auth/register", map[string]string{"email": email, "password": password}, http.StatusCreated, &registered)
	if registered.UserID <= 0 {
		t.Fatalf("register returned no user id: %+v", registered)
	}

	var loggedIn dto.LoginResponse
	postJSON(t, ts.URL+"/auth/login", map[string]string{"email": email, "password": password}, http.StatusOK, &loggedIn)
	if strings.TrimSpace(loggedIn.Token) == "" {
		t.Fatal("login response missing token")
	}
	identity, err := tokens.Parse(loggedIn.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if identity.UserID != registered.UserID {
		t.Fatalf("token subject = %d, want %d", identity.UserID, registered.UserID)
	}

	t.Logf("created user %s (id=%d) and successfully logged in", email, registered.UserID)
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, out any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", url, err)
	}
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
