// Package handlers exposes the read gateway: cache-first point reads and
// durable-only listing.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mstamatov/userpipe-backend/internal/services"
)

// UserHandler answers reads against the two stores. The cache is
// authoritative when it has an entry, even if durable data differs; the
// durable store is the fallback and the only source for listing.
type UserHandler struct {
	Cache services.Cache
	Store services.Store

	// RepopulateCache controls whether a durable-fallback hit is written
	// back to the cache. Off by default: the upstream system never
	// repopulates on miss.
	RepopulateCache bool
	CacheTTL        time.Duration
}

type userResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Source  string            `json:"source,omitempty"`
	User    map[string]string `json:"user,omitempty"`
}

type listUsersResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Users   []string `json:"users"`
	Total   int      `json:"total"`
}

// GetUser handles GET /users/{uid}: Redis first, Postgres on miss.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	ctx := r.Context()

	fields, err := h.Cache.Get(ctx, uid)
	if err != nil {
		// Retryable: treat as a miss and fall back to Postgres.
		log.Printf("⚠️  Cache read failed for %s: %v", uid, err)
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusOK, userResponse{Success: true, Source: "cache", User: fields})
		return
	}
	if err == nil {
		log.Printf("Key %s not found in Redis. Trying Postgres...", uid)
	}

	rec, err := h.Store.GetUserWithAddress(ctx, uid)
	if err != nil {
		log.Printf("❌ Postgres read failed for %s: %v", uid, err)
		writeJSON(w, http.StatusServiceUnavailable, userResponse{
			Success: false,
			Message: "User lookup is temporarily unavailable",
		})
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, userResponse{Success: false, Message: "User not found"})
		return
	}

	if h.RepopulateCache {
		if err := h.Cache.Put(ctx, uid, rec.Fields(), h.CacheTTL); err != nil {
			log.Printf("⚠️  Cache repopulate failed for %s: %v", uid, err)
		}
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, Source: "postgres", User: rec.Fields()})
}

// ListUsers handles GET /users: Postgres only, newest first. The cache is
// never consulted for listing.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	uids, err := h.Store.ListUserIDs(r.Context())
	if err != nil {
		log.Printf("❌ Postgres list failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, listUsersResponse{
			Success: false,
			Message: "User listing is temporarily unavailable",
			Users:   []string{},
		})
		return
	}
	if uids == nil {
		uids = []string{}
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Success: true, Users: uids, Total: len(uids)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
