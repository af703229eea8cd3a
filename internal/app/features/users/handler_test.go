package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	usersfeature "github.com/clanhaven/clanhaven/internal/app/features/users"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/grouplock"
	"github.com/clanhaven/clanhaven/internal/app/system/indexes"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/clanhaven/clanhaven/internal/testutil"
	"go.uber.org/zap"
)

func postJSON(path string, body any) *http.Request {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		panic(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestServeRegister_Validation(t *testing.T) {
	// Validation runs before any store access, so no database is needed.
	h := usersfeature.NewHandler(nil, nil, zap.NewNop())

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"email": "a@b.example", "password": "longenough1"}},
		{"missing email", map[string]any{"name": "A", "password": "longenough1"}},
		{"short password", map[string]any{"name": "A", "email": "a@b.example", "password": "short1"}},
		{"no digit", map[string]any{"name": "A", "email": "a@b.example", "password": "nodigitshere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeRegister(w, postJSON("/users", tt.body))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestServeRegister_CreateAndDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	h := usersfeature.NewHandler(userstore.New(db), nil, zap.NewNop())

	body := map[string]any{"name": "New Player", "email": "player@test.example", "password": "longenough1"}

	w := httptest.NewRecorder()
	h.ServeRegister(w, postJSON("/users", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", w.Code, w.Body.String())
	}
	var created models.User
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.Role != "user" || created.Status != models.StatusActive {
		t.Fatalf("unexpected created user: role %q status %q", created.Role, created.Status)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password_hash")) {
		t.Fatal("response must not leak the password hash")
	}

	w = httptest.NewRecorder()
	h.ServeRegister(w, postJSON("/users", body))
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d, want 409; body %s", w.Code, w.Body.String())
	}
}

func TestServePurge_ReturnsTally(t *testing.T) {
	store := testutil.NewMemStore()
	engine := membership.New(store, grouplock.New(2*time.Second), nil, nil, zap.NewNop(), membership.Config{})
	h := usersfeature.NewHandler(nil, engine, zap.NewNop())
	f := testutil.NewFixtures(t, store)

	actor := f.CreateUser("Actor")
	officer := f.CreateUser("Officer")
	f.CreateClan("Led Clan", actor, []models.User{officer}, officer)
	other := f.CreateUser("Other")
	f.CreateClan("Member Clan", other, nil, actor)

	w := httptest.NewRecorder()
	r := postJSON("/users/"+actor.ID.Hex()+"/purge", nil)
	r = testutil.WithChiURLParam(r, "userID", actor.ID.Hex())
	h.ServePurge(w, testutil.AdminSession(r))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	var res struct {
		UserID           string `json:"user_id"`
		ClansTransferred int    `json:"clans_transferred"`
		ClansLeft        int    `json:"clans_left"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if res.UserID != actor.ID.Hex() || res.ClansTransferred != 1 || res.ClansLeft != 1 {
		t.Fatalf("tally = %+v", res)
	}

	u, _ := store.GetUser(actor.ID)
	if u.ClanID != nil || u.FederationID != nil {
		t.Fatalf("purged user still referenced: %+v", u)
	}
}
