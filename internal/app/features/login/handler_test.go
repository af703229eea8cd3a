package login_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/features/login"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/clanhaven/clanhaven/internal/app/system/authutil"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/clanhaven/clanhaven/internal/testutil"
	"go.uber.org/zap"
)

func loginRequest(email, password string) *http.Request {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	r := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "10.0.0.1:4242"
	return r
}

func TestServeLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", false, zap.NewNop()); err != nil {
		t.Fatalf("init session store: %v", err)
	}

	users := userstore.New(db)
	hash, err := authutil.HashPassword("longenough1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := users.Create(ctx, models.User{
		Name:         "Lena",
		Email:        "lena@test.example",
		Role:         "user",
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := users.Create(ctx, models.User{
		Name:         "Banned",
		Email:        "banned@test.example",
		Status:       models.StatusDisabled,
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("seed disabled user: %v", err)
	}

	h := login.NewHandler(users, nil, zap.NewNop())

	t.Run("success sets session cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeLogin(w, loginRequest("lena@test.example", "longenough1"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
		}
		if len(w.Result().Cookies()) == 0 {
			t.Fatal("expected a session cookie")
		}
		var res struct {
			Name string `json:"name"`
			Role string `json:"role"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if res.Name != "Lena" || res.Role != "user" {
			t.Fatalf("response = %+v", res)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeLogin(w, loginRequest("lena@test.example", "wrongpassword1"))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeLogin(w, loginRequest("ghost@test.example", "longenough1"))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeLogin(w, loginRequest("banned@test.example", "longenough1"))
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})
}
