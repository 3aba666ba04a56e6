/*
Package client is the Go counterpart of the browser service module: a
thin HTTP wrapper over the works API implementing the read-modify-write
contract for create, update and bulk import.

CONSISTENCY:
  Create/update/bulk are not server-side transactions. Each one is
  "GET full partition, mutate in memory, POST the mutated partition
  back", so two sessions racing on the same year can lose one session's
  update at date-bucket granularity. This is the documented consistency
  window of the system, not something this package tries to mask.

AUTO-FILL:
  FindMostRecentWorkByNumber/Reference scan the current year plus a
  bounded look-back window of previous years, matching the server-side
  lookup engine's policy.

SEE ALSO:
  - api/handlers.go: the endpoints consumed here
  - worklog/dedupe.go: the reconciliation applied on bulk import
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/warp/worklog-engine/worklog"
)

// Client talks to a works API server.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL (e.g. "http://localhost:5000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// READS
// =============================================================================

// GetAllWorksByYear fetches the full partition for year.
func (c *Client) GetAllWorksByYear(ctx context.Context, year int) (worklog.YearPartition, error) {
	var part worklog.YearPartition
	if err := c.do(ctx, http.MethodGet, "/works", year, nil, nil, &part); err != nil {
		return nil, err
	}
	if part == nil {
		part = worklog.YearPartition{}
	}
	return part, nil
}

// GetWorksByDate returns one date bucket of year (possibly empty).
func (c *Client) GetWorksByDate(ctx context.Context, year int, date string) ([]worklog.WorkItem, error) {
	part, err := c.GetAllWorksByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return part[date], nil
}

// GetDatesWithWorks lists the dates of year holding at least one item.
func (c *Client) GetDatesWithWorks(ctx context.Context, year int) ([]string, error) {
	var dates []string
	if err := c.do(ctx, http.MethodGet, "/works/dates", year, nil, nil, &dates); err != nil {
		return nil, err
	}
	return dates, nil
}

// =============================================================================
// MUTATIONS (read-modify-write)
// =============================================================================

// CreateWork inserts item into its date bucket of year and posts the
// partition back. A missing id is generated here, client-side.
func (c *Client) CreateWork(ctx context.Context, item worklog.WorkItem, year int) (worklog.WorkItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	part, err := c.GetAllWorksByYear(ctx, year)
	if err != nil {
		return worklog.WorkItem{}, err
	}
	part[item.Date] = append(part[item.Date], item)

	if err := c.postWorks(ctx, year, part); err != nil {
		return worklog.WorkItem{}, err
	}
	return item, nil
}

// UpdateWork replaces the item identified by id with item. When the
// date changed, the item is relocated to its new date bucket; when the
// new date falls in a different calendar year, it is removed from the
// old year's partition and created in the new year's, keeping the
// one-partition-per-item invariant.
func (c *Client) UpdateWork(ctx context.Context, id string, item worklog.WorkItem, year int) (worklog.WorkItem, error) {
	item.ID = id

	part, err := c.GetAllWorksByYear(ctx, year)
	if err != nil {
		return worklog.WorkItem{}, err
	}
	oldDate, idx := part.FindByID(id)
	if idx < 0 {
		return worklog.WorkItem{}, fmt.Errorf("update work %s: %w", id, worklog.ErrNotFound)
	}

	targetYear := worklog.YearOf(item.Date, year)

	if targetYear == year {
		if item.Date == oldDate {
			part[oldDate][idx] = item
		} else {
			part[oldDate] = append(part[oldDate][:idx:idx], part[oldDate][idx+1:]...)
			part[item.Date] = append(part[item.Date], item)
		}
		if err := c.postWorks(ctx, year, part); err != nil {
			return worklog.WorkItem{}, err
		}
		return item, nil
	}

	// Cross-year move: drop from the old partition first, then create in
	// the target year. A failure between the two steps loses the item
	// from neither year permanently - the create can be retried.
	part[oldDate] = append(part[oldDate][:idx:idx], part[oldDate][idx+1:]...)
	if err := c.postWorks(ctx, year, part); err != nil {
		return worklog.WorkItem{}, err
	}
	return c.CreateWork(ctx, item, targetYear)
}

// DeleteWork removes the item by id from year.
func (c *Client) DeleteWork(ctx context.Context, id string, year int) error {
	return c.do(ctx, http.MethodDelete, "/works/"+url.PathEscape(id), year, nil, nil, nil)
}

// BulkCreateWorks appends works to their date buckets of year,
// reconciling each bucket so exact-content duplicates of existing
// records are dropped (first occurrence wins). Returns the number of
// duplicates removed.
func (c *Client) BulkCreateWorks(ctx context.Context, works []worklog.WorkItem, year int) (int, error) {
	part, err := c.GetAllWorksByYear(ctx, year)
	if err != nil {
		return 0, err
	}

	byDate := make(map[string][]worklog.WorkItem)
	for _, w := range works {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		byDate[w.Date] = append(byDate[w.Date], w)
	}

	removed := 0
	for date, incoming := range byDate {
		merged, dropped := worklog.Reconcile(part[date], incoming)
		part[date] = merged
		removed += dropped
	}

	if err := c.postWorks(ctx, year, part); err != nil {
		return 0, err
	}
	return removed, nil
}

// =============================================================================
// AUTO-FILL LOOKUPS
// =============================================================================

// FindMostRecentWorkByNumber returns the most recent item whose number
// matches (case-insensitively), scanning year plus the default
// look-back window. Nil when nothing matches.
func (c *Client) FindMostRecentWorkByNumber(ctx context.Context, number string, year int) (*worklog.WorkItem, error) {
	return c.findMostRecent(ctx, year, url.Values{"number": {number}})
}

// FindMostRecentWorkByReference is FindMostRecentWorkByNumber for the
// reference field.
func (c *Client) FindMostRecentWorkByReference(ctx context.Context, reference string, year int) (*worklog.WorkItem, error) {
	return c.findMostRecent(ctx, year, url.Values{"reference": {reference}})
}

func (c *Client) findMostRecent(ctx context.Context, year int, query url.Values) (*worklog.WorkItem, error) {
	var item *worklog.WorkItem
	if err := c.do(ctx, http.MethodGet, "/works/lookup", year, query, nil, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) postWorks(ctx context.Context, year int, part worklog.YearPartition) error {
	return c.do(ctx, http.MethodPost, "/works", year, nil, part, nil)
}

// do issues one request and decodes the response into out (when non-nil).
// Error statuses are mapped back onto the worklog sentinels so callers
// can implement degraded-mode fallbacks on 503.
func (c *Client) do(ctx context.Context, method, path string, year int, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("year", strconv.Itoa(year))

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, worklog.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusServiceUnavailable:
			return fmt.Errorf("%s: %w", msg, worklog.ErrStorageUnavailable)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", msg, worklog.ErrNotFound)
		case http.StatusBadRequest:
			return fmt.Errorf("%s: %w", msg, worklog.ErrInvalidInput)
		default:
			return fmt.Errorf("%s %s: %s", method, path, msg)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
