package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstamatov/userpipe-backend/internal/models"
)

type fakeCache struct {
	entries map[string]map[string]string
	getErr  error
	puts    int
}

func (c *fakeCache) Put(_ context.Context, uid string, fields map[string]string, _ time.Duration) error {
	c.puts++
	c.entries[uid] = fields
	return nil
}

func (c *fakeCache) Get(_ context.Context, uid string) (map[string]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if fields, ok := c.entries[uid]; ok {
		return fields, nil
	}
	return map[string]string{}, nil
}

type fakeStore struct {
	records map[string]*models.UserWithAddress
	uids    []string
	err     error
}

func (s *fakeStore) EnsureSchema(context.Context) error                  { return nil }
func (s *fakeStore) TableExists(context.Context, string) (bool, error)   { return true, nil }
func (s *fakeStore) InsertUser(context.Context, models.User) error       { return nil }
func (s *fakeStore) InsertAddress(context.Context, models.Address) error { return nil }

func (s *fakeStore) ListUserIDs(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.uids, nil
}

func (s *fakeStore) GetUserWithAddress(_ context.Context, uid string) (*models.UserWithAddress, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records[uid], nil
}

func newTestRouter(cache *fakeCache, store *fakeStore, repopulate bool) *chi.Mux {
	h := &UserHandler{Cache: cache, Store: store, RepopulateCache: repopulate, CacheTTL: 120 * time.Second}
	r := chi.NewRouter()
	r.Get("/users", h.ListUsers)
	r.Get("/users/{uid}", h.GetUser)
	return r
}

func durableRecord(uid string) *models.UserWithAddress {
	return &models.UserWithAddress{
		UID: uid, FirstName: "Jane", LastName: "Doe", Username: "jdoe",
		Email: "jane@example.com", PhoneNumber: "555-0101",
		SocialInsuranceNumber: "token", DateOfBirth: "1987-04-12",
		City: "Winnipeg", StreetName: "Main St", StreetAddress: "42",
		ZipCode: "R3C 4A5", State: "Manitoba", Country: "Canada",
	}
}

func doGet(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetUserCacheHit(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{
		"uid-1": {"first_name": "Cached", "city": "Winnipeg"},
	}}
	store := &fakeStore{records: map[string]*models.UserWithAddress{"uid-1": durableRecord("uid-1")}}
	r := newTestRouter(cache, store, false)

	rec, body := doGet(t, r, "/users/uid-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cache", body["source"])
	user := body["user"].(map[string]interface{})
	// The cache answer is served as-is, even though durable data differs.
	assert.Equal(t, "Cached", user["first_name"])
}

func TestGetUserFallbackToDurable(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{}}
	store := &fakeStore{records: map[string]*models.UserWithAddress{"uid-1": durableRecord("uid-1")}}
	r := newTestRouter(cache, store, false)

	rec, body := doGet(t, r, "/users/uid-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "postgres", body["source"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Jane", user["first_name"])
	assert.Equal(t, "Winnipeg", user["city"])

	// Default behavior: the fallback hit does not repopulate the cache.
	assert.Zero(t, cache.puts)
	assert.Empty(t, cache.entries)
}

func TestGetUserFallbackRepopulatesWhenEnabled(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{}}
	store := &fakeStore{records: map[string]*models.UserWithAddress{"uid-1": durableRecord("uid-1")}}
	r := newTestRouter(cache, store, true)

	rec, _ := doGet(t, r, "/users/uid-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, "Jane", cache.entries["uid-1"]["first_name"])
}

func TestGetUserUnknownUID(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{}}
	store := &fakeStore{records: map[string]*models.UserWithAddress{}}
	r := newTestRouter(cache, store, false)

	rec, body := doGet(t, r, "/users/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestGetUserCacheErrorFallsBack(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{}, getErr: errors.New("redis down")}
	store := &fakeStore{records: map[string]*models.UserWithAddress{"uid-1": durableRecord("uid-1")}}
	r := newTestRouter(cache, store, false)

	rec, body := doGet(t, r, "/users/uid-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "postgres", body["source"])
}

func TestGetUserBothStoresDownIsDistinguishable(t *testing.T) {
	cache := &fakeCache{entries: map[string]map[string]string{}, getErr: errors.New("redis down")}
	store := &fakeStore{err: errors.New("postgres down")}
	r := newTestRouter(cache, store, false)

	rec, body := doGet(t, r, "/users/uid-1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestListUsers(t *testing.T) {
	store := &fakeStore{uids: []string{"uid-3", "uid-2", "uid-1"}}
	r := newTestRouter(&fakeCache{entries: map[string]map[string]string{}}, store, false)

	rec, body := doGet(t, r, "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, []interface{}{"uid-3", "uid-2", "uid-1"}, body["users"])
}

func TestListUsersEmpty(t *testing.T) {
	r := newTestRouter(&fakeCache{entries: map[string]map[string]string{}}, &fakeStore{}, false)

	rec, body := doGet(t, r, "/users")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["users"])
}

func TestListUsersStoreDown(t *testing.T) {
	r := newTestRouter(&fakeCache{entries: map[string]map[string]string{}}, &fakeStore{err: errors.New("postgres down")}, false)

	rec, body := doGet(t, r, "/users")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["success"])
}
