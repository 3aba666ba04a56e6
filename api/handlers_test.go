package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/worklog-engine/store/memory"
	"github.com/warp/worklog-engine/worklog"
)

// newTestServer wires the full router over a fresh memory store with the
// clock pinned to mid-2025.
func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	h := NewHandler(store)
	h.Now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func apiItem(id, date string) worklog.WorkItem {
	return worklog.WorkItem{
		ID:          id,
		Number:      "100",
		Reference:   "PMP-A",
		Description: "Replace bearing",
		Department:  "Mechanical",
		Status:      "Pending",
		Date:        date,
	}
}

func jsonBody(t *testing.T, body any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return &buf
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, jsonBody(t, body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetWorksEmptyYear(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	part := decodeBody[worklog.YearPartition](t, resp)
	assert.Empty(t, part)
}

func TestSaveThenGetWorks(t *testing.T) {
	srv, _ := newTestServer(t)

	in := worklog.YearPartition{
		"2025-03-01": {apiItem("a", "2025-03-01")},
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/works", in)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decodeBody[SaveResponse](t, resp)
	assert.True(t, saved.Success)

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	part := decodeBody[worklog.YearPartition](t, resp)
	assert.Equal(t, in, part)
}

func TestSaveMergesNotOverwrites(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-01": {apiItem("a", "2025-03-01")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-02": {apiItem("b", "2025-03-02")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	part := decodeBody[worklog.YearPartition](t, resp)
	assert.Len(t, part, 2)
	assert.Contains(t, part, "2025-03-01")
	assert.Contains(t, part, "2025-03-02")
}

func TestSaveExplicitYear(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/works?year=2024", worklog.YearPartition{
		"2024-12-31": {apiItem("a", "2024-12-31")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Default year (2025) does not see 2024's data.
	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	assert.Empty(t, decodeBody[worklog.YearPartition](t, resp))

	resp, err = http.Get(srv.URL + "/works?year=2024")
	require.NoError(t, err)
	part := decodeBody[worklog.YearPartition](t, resp)
	assert.Contains(t, part, "2024-12-31")
}

func TestSaveRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"date key not parseable", worklog.YearPartition{"not-a-date": {apiItem("a", "2025-03-01")}}},
		{"date outside resolved year", worklog.YearPartition{"2024-03-01": {apiItem("a", "2024-03-01")}}},
		{"unknown department", worklog.YearPartition{"2025-03-01": {{
			ID: "a", Number: "100", Reference: "R", Description: "D",
			Department: "Plumbing", Date: "2025-03-01",
		}}}},
		{"missing description", worklog.YearPartition{"2025-03-01": {{
			ID: "a", Number: "100", Reference: "R",
			Department: "Mechanical", Date: "2025-03-01",
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/works", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Not JSON at all.
	resp, err := http.Post(srv.URL+"/works", "application/json", bytes.NewBufferString("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSaveFillsMissingIDs(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-01": {apiItem("", "2025-03-01")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	part := decodeBody[worklog.YearPartition](t, resp)
	require.Len(t, part["2025-03-01"], 1)
	assert.NotEmpty(t, part["2025-03-01"][0].ID)
}

func TestDeleteWork(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-01": {apiItem("a", "2025-03-01"), apiItem("b", "2025-03-01")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/works/a", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	part := decodeBody[worklog.YearPartition](t, resp)
	require.Len(t, part["2025-03-01"], 1)
	assert.Equal(t, "b", part["2025-03-01"][0].ID)

	// Unknown id leaves storage untouched and reports 404.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/works/zzz", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetDates(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-02": {apiItem("a", "2025-03-02")},
		"2025-03-01": {apiItem("b", "2025-03-01")},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/works/dates")
	require.NoError(t, err)
	dates := decodeBody[[]string](t, resp)
	assert.Equal(t, []string{"2025-03-01", "2025-03-02"}, dates)
}

func TestLookupWork(t *testing.T) {
	srv, _ := newTestServer(t)

	older := apiItem("old", "2024-06-01")
	older.Description = "Old description"
	newer := apiItem("new", "2025-02-01")
	newer.Description = "New description"

	resp := doJSON(t, http.MethodPost, srv.URL+"/works?year=2024", worklog.YearPartition{
		"2024-06-01": {older},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-02-01": {newer},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Most recent occurrence wins.
	resp, err := http.Get(srv.URL + "/works/lookup?number=100")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	found := decodeBody[*worklog.WorkItem](t, resp)
	require.NotNil(t, found)
	assert.Equal(t, "New description", found.Description)

	// Case-insensitive reference match.
	resp, err = http.Get(srv.URL + "/works/lookup?reference=pmp-a")
	require.NoError(t, err)
	found = decodeBody[*worklog.WorkItem](t, resp)
	require.NotNil(t, found)

	// No match is a 200 with a null body.
	resp, err = http.Get(srv.URL + "/works/lookup?number=999")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decodeBody[*worklog.WorkItem](t, resp))

	// Exactly one of number/reference is required.
	for _, q := range []string{"", "?number=1&reference=R"} {
		resp, err = http.Get(srv.URL + "/works/lookup" + q)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	// Zero look-back restricts the scan to the resolved year.
	resp, err = http.Get(srv.URL + "/works/lookup?number=100&lookback=0&year=2023")
	require.NoError(t, err)
	assert.Nil(t, decodeBody[*worklog.WorkItem](t, resp))
}

func TestGetSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	inProgress := apiItem("a", "2025-03-01")
	inProgress.Status = "In Progress"
	done := apiItem("b", "2025-03-01")
	done.Number = "200"
	done.Status = "Completed"

	resp := doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-01": {inProgress, done},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/works/summary")
	require.NoError(t, err)
	s := decodeBody[worklog.Summary](t, resp)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.ByStatus["In Progress"])
	assert.Equal(t, 1, s.ByStatus["Completed"])
	assert.Equal(t, 2, s.ByDepartment["Mechanical"])
	assert.Equal(t, 1, s.UniqueInProgress)
}

func TestStorageUnavailableMapsTo503(t *testing.T) {
	srv, store := newTestServer(t)
	store.SetUnavailable(true)

	resp, err := http.Get(srv.URL + "/works")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decodeBody[ErrorResponse](t, resp)
	assert.NotEmpty(t, body.Error)

	resp = doJSON(t, http.MethodPost, srv.URL+"/works", worklog.YearPartition{
		"2025-03-01": {apiItem("a", "2025-03-01")},
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}
