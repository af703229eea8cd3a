package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func withTestUser(r *http.Request, role string) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	})
}

func TestRequireSignedIn_NoUser(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/clans", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	called := false
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withTestUser(httptest.NewRequest("GET", "/clans", nil), "user"))

	if !called || rec.Code != http.StatusOK {
		t.Errorf("called = %v, status = %d", called, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := auth.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin allowed", "admin", http.StatusOK},
		{"case-insensitive", "ADMIN", http.StatusOK},
		{"plain user forbidden", "user", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, withTestUser(httptest.NewRequest("GET", "/users/x/purge", nil), tc.role))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users/x/purge", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestCurrentUser(t *testing.T) {
	if u, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil)); ok || u != nil {
		t.Error("expected no user on a bare request")
	}

	u, ok := auth.CurrentUser(withTestUser(httptest.NewRequest("GET", "/", nil), "admin"))
	if !ok || u == nil {
		t.Fatal("expected user in context")
	}
	if u.Role != "admin" || !u.IsAdmin() {
		t.Errorf("role = %q, IsAdmin = %v", u.Role, u.IsAdmin())
	}
	if u.UserID() == primitive.NilObjectID {
		t.Error("UserID should parse the seeded hex id")
	}
}

func TestSessionUser_UserID_Malformed(t *testing.T) {
	u := &auth.SessionUser{ID: "not-hex"}
	if u.UserID() != primitive.NilObjectID {
		t.Error("malformed id should yield the nil ObjectID")
	}
}

func TestInitSessionStore_EmptyKey(t *testing.T) {
	if err := auth.InitSessionStore("", "", false, zap.NewNop()); err == nil {
		t.Error("expected an error for an empty session key")
	}
}
