/*
handlers.go - HTTP handlers for the work tracking API

PURPOSE:
  Exposes the partition store, lookup engine and reporting helpers via
  REST. Handles request parsing, year resolution, JSON serialization
  and status-code mapping; all domain rules live in worklog.

ENDPOINTS:
  GET    /works              Full year partition
  POST   /works              Merge a partial partition
  DELETE /works/{id}         Remove one item by id
  GET    /works/dates        Dates with at least one item
  GET    /works/lookup       Most recent item by number or reference
  GET    /works/summary      Reporting aggregates

YEAR RESOLUTION:
  Every operation takes an optional ?year=YYYY. When absent the server
  clock decides, once per request; the resolved year is passed down
  explicitly so no deeper layer re-derives "current year" on its own.

ERROR MAPPING:
  worklog.ErrStorageUnavailable -> 503 (shared file/mount unreachable)
  worklog.ErrNotFound           -> 404
  worklog.ErrInvalidInput       -> 400
  anything else                 -> 500, never swallowed

SEE ALSO:
  - dto.go: response envelopes
  - auth.go: auth handlers and bearer middleware
  - server.go: router setup
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/worklog-engine/auth"
	"github.com/warp/worklog-engine/worklog"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  worklog.Store
	Lookup *worklog.Lookup

	// Auth is optional; when nil the /auth routes are not mounted.
	Auth *auth.Service
	// RequireAuth gates the /works routes behind a bearer token.
	RequireAuth bool

	// Now is the clock used for default-year resolution.
	Now func() time.Time
}

// NewHandler creates a handler over store.
func NewHandler(store worklog.Store) *Handler {
	return &Handler{
		Store:  store,
		Lookup: worklog.NewLookup(store),
		Now:    time.Now,
	}
}

// resolveYear picks the partition year for this request: the year query
// parameter when valid, otherwise the current calendar year.
func (h *Handler) resolveYear(r *http.Request) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil && year > 0 {
			return year
		}
	}
	return h.Now().Year()
}

// =============================================================================
// WORKS HANDLERS
// =============================================================================

// GetWorks returns the full partition for the resolved year.
// A year never written yields {} with status 200.
func (h *Handler) GetWorks(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)

	part, err := h.Store.Load(r.Context(), year)
	if err != nil {
		writeStoreError(w, "Failed to read works", err)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

// SaveWorks merges a partial partition into the resolved year.
// The body must be a JSON object keyed by date string; each incoming
// date bucket replaces the stored bucket for that date wholesale.
func (h *Handler) SaveWorks(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)

	var partial worklog.YearPartition
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if partial == nil {
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object", nil)
		return
	}

	for date, bucket := range partial {
		if _, err := time.Parse(worklog.DateLayout, date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date key: "+date, err)
			return
		}
		if worklog.YearOf(date, year) != year {
			writeError(w, http.StatusBadRequest, "Date "+date+" does not belong to year "+strconv.Itoa(year), nil)
			return
		}
		for i := range bucket {
			// Ids are normally client-generated; fill in for clients
			// that omit them.
			if bucket[i].ID == "" {
				bucket[i].ID = uuid.New().String()
			}
			if err := worklog.ValidateItem(bucket[i]); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid work item on "+date, err)
				return
			}
		}
		partial[date] = bucket
	}

	if err := h.Store.Save(r.Context(), year, partial); err != nil {
		writeStoreError(w, "Failed to save works", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Success: true, Message: "Data merged successfully"})
}

// DeleteWork removes the first item whose id matches, from whichever
// date bucket holds it. Storage is untouched when nothing matched.
func (h *Handler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)
	id := chi.URLParam(r, "id")

	part, err := h.Store.Load(r.Context(), year)
	if err != nil {
		writeStoreError(w, "Failed to read works", err)
		return
	}

	// Deterministic scan order across the map.
	dates := make([]string, 0, len(part))
	for date := range part {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		bucket := part[date]
		for i, item := range bucket {
			if item.ID != id {
				continue
			}
			// The shrunk bucket replaces the stored one; an empty
			// bucket keeps its date key, matching historical data.
			updated := append(append([]worklog.WorkItem{}, bucket[:i]...), bucket[i+1:]...)
			if err := h.Store.Save(r.Context(), year, worklog.YearPartition{date: updated}); err != nil {
				writeStoreError(w, "Failed to delete work item", err)
				return
			}
			writeJSON(w, http.StatusOK, SaveResponse{Success: true, Message: "Work item deleted successfully"})
			return
		}
	}

	writeError(w, http.StatusNotFound, "Work item not found", nil)
}

// GetDates lists the dates of the resolved year holding at least one item.
func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)

	part, err := h.Store.Load(r.Context(), year)
	if err != nil {
		writeStoreError(w, "Failed to read works", err)
		return
	}
	writeJSON(w, http.StatusOK, worklog.DatesWithWorks(part))
}

// LookupWork returns the most recent item matching ?number= or
// ?reference= within the bounded look-back window. No match is a 200
// with a null body, not an error.
func (h *Handler) LookupWork(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)
	number := r.URL.Query().Get("number")
	reference := r.URL.Query().Get("reference")

	if (number == "") == (reference == "") {
		writeError(w, http.StatusBadRequest, "Provide exactly one of number or reference", nil)
		return
	}

	lookBack := worklog.DefaultLookBack
	if raw := r.URL.Query().Get("lookback"); raw != "" {
		lb, err := strconv.Atoi(raw)
		if err != nil || lb < 0 {
			writeError(w, http.StatusBadRequest, "Invalid lookback", err)
			return
		}
		lookBack = lb
	}
	scope := worklog.Scope{Year: year, LookBack: lookBack}

	var item *worklog.WorkItem
	var err error
	if number != "" {
		item, err = h.Lookup.MostRecentByNumber(r.Context(), number, scope)
	} else {
		item, err = h.Lookup.MostRecentByReference(r.Context(), reference, scope)
	}
	if err != nil {
		writeStoreError(w, "Failed to look up works", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetSummary returns the reporting aggregates for the resolved year.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year := h.resolveYear(r)

	part, err := h.Store.Load(r.Context(), year)
	if err != nil {
		writeStoreError(w, "Failed to read works", err)
		return
	}
	writeJSON(w, http.StatusOK, worklog.Summarize(part))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps storage failures onto 503 vs 500 so callers can
// tell "medium unreachable" apart from "unexpected fault".
func writeStoreError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, worklog.ErrStorageUnavailable) {
		writeError(w, http.StatusServiceUnavailable, message+" (storage unavailable)", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}
