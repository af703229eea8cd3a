package federations_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clanhaven/clanhaven/internal/app/features/federations"
	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/app/system/grouplock"
	"github.com/clanhaven/clanhaven/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*federations.Handler, *testutil.Fixtures) {
	t.Helper()
	store := testutil.NewMemStore()
	engine := membership.New(store, grouplock.New(2*time.Second), nil, nil, zap.NewNop(), membership.Config{})
	return federations.NewHandler(engine, store, zap.NewNop()), testutil.NewFixtures(t, store)
}

func fedRequest(method, path string, fedID primitive.ObjectID, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if !fedID.IsZero() {
		r = testutil.WithChiURLParam(r, "federationID", fedID.Hex())
	}
	return r
}

func TestServeView_RejectsClanID(t *testing.T) {
	h, f := newHandler(t)
	leader := f.CreateUser("Lena")
	clan := f.CreateClan("Nightwatch", leader, nil)

	w := httptest.NewRecorder()
	h.ServeView(w, fedRequest(http.MethodGet, "/federations/"+clan.ID.Hex(), clan.ID, nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestServeList_FiltersFederations(t *testing.T) {
	h, f := newHandler(t)
	a := f.CreateUser("A")
	b := f.CreateUser("B")
	f.CreateClan("Alpha", a, nil)
	f.CreateFederation("Beta Pact", b, nil)

	w := httptest.NewRecorder()
	h.ServeList(w, httptest.NewRequest(http.MethodGet, "/federations", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got shared.GroupList
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Groups) != 1 || got.Groups[0].Name != "Beta Pact" {
		t.Fatalf("list = %+v, want just Beta Pact", got.Groups)
	}
}

func TestServeAttachDetachClan(t *testing.T) {
	h, f := newHandler(t)
	fedLeader := f.CreateUser("Fiona")
	clanLeader := f.CreateUser("Carl")
	fed := f.CreateFederation("Northern Pact", fedLeader, nil)
	clan := f.CreateClan("Nightwatch", clanLeader, nil)

	attach := func(actor *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := testutil.WithChiURLParam(actor, "clanID", clan.ID.Hex())
		h.ServeAttachClan(w, r)
		return w
	}

	t.Run("clan leader may not attach", func(t *testing.T) {
		r := fedRequest(http.MethodPost, "/federations/x/clans/y", fed.ID, nil)
		r = testutil.UserSession(r, clanLeader.ID)
		if w := attach(r); w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("federation leader attaches", func(t *testing.T) {
		r := fedRequest(http.MethodPost, "/federations/x/clans/y", fed.ID, nil)
		r = testutil.UserSession(r, fedLeader.ID)
		if w := attach(r); w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204; body %s", w.Code, w.Body.String())
		}
		g, _ := f.Store().GetGroup(fed.ID)
		if !g.HasClan(clan.ID) {
			t.Fatalf("clan not attached: %+v", g.ClanIDs)
		}
		c, _ := f.Store().GetGroup(clan.ID)
		if c.ParentFederationID == nil || *c.ParentFederationID != fed.ID {
			t.Fatalf("clan parent not set: %+v", c.ParentFederationID)
		}
	})

	t.Run("second attach rejected", func(t *testing.T) {
		r := fedRequest(http.MethodPost, "/federations/x/clans/y", fed.ID, nil)
		r = testutil.UserSession(r, fedLeader.ID)
		if w := attach(r); w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422; body %s", w.Code, w.Body.String())
		}
	})

	t.Run("detach", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := fedRequest(http.MethodDelete, "/federations/x/clans/y", fed.ID, nil)
		r = testutil.WithChiURLParam(testutil.UserSession(r, fedLeader.ID), "clanID", clan.ID.Hex())
		h.ServeDetachClan(w, r)
		if w.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204; body %s", w.Code, w.Body.String())
		}
		c, _ := f.Store().GetGroup(clan.ID)
		if c.ParentFederationID != nil {
			t.Fatalf("clan parent not cleared: %+v", c.ParentFederationID)
		}
	})
}

func TestServeDissolve_DetachesChildClans(t *testing.T) {
	h, f := newHandler(t)
	fedLeader := f.CreateUser("Fiona")
	clanLeader := f.CreateUser("Carl")
	fed := f.CreateFederation("Northern Pact", fedLeader, nil)
	clan := f.CreateClan("Nightwatch", clanLeader, nil)
	f.AttachClan(fed, clan)

	w := httptest.NewRecorder()
	r := fedRequest(http.MethodPost, "/federations/x/dissolve", fed.ID, nil)
	h.ServeDissolve(w, testutil.UserSession(r, fedLeader.ID))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body %s", w.Code, w.Body.String())
	}
	if _, ok := f.Store().GetGroup(fed.ID); ok {
		t.Fatal("federation still stored after dissolve")
	}
	c, ok := f.Store().GetGroup(clan.ID)
	if !ok {
		t.Fatal("child clan should survive federation dissolve")
	}
	if c.ParentFederationID != nil {
		t.Fatalf("surviving clan still linked: %+v", c.ParentFederationID)
	}
}
