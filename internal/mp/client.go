// Package mp is a thin HTTP client for the Materials Project REST API.
//
// The client issues queries and hands back raw records; it does not retry,
// cache, or reshape anything beyond JSON decoding. Record normalization is
// internal/normalize's job, and remote failures propagate to the caller
// unchanged as *RemoteError.
package mp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/johnwroge/Materials-Research/internal/config"
	"github.com/johnwroge/Materials-Research/internal/metrics"
	"github.com/johnwroge/Materials-Research/internal/normalize"
)

// ErrNotFound is returned by GetByID when the database has no record for the
// requested material id.
var ErrNotFound = errors.New("mp: material not found")

// RemoteError is an opaque failure reported by the remote database. It is
// propagated unchanged; callers decide how to surface it.
type RemoteError struct {
	Status  int    // HTTP status, 0 if the failure was reported in-band
	Message string // remote error text, may be empty
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mp: remote error (http %d)", e.Status)
	}
	if e.Status == 0 {
		return "mp: remote error: " + e.Message
	}
	return fmt.Sprintf("mp: remote error (http %d): %s", e.Status, e.Message)
}

// Client talks to one Materials Project endpoint with one API key.
// It is safe for concurrent use.
type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string
	job     string
}

// New builds a Client from resolved configuration.
func New(cfg config.Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 8,
	}

	return &Client{
		hc: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		job:     "matproj",
	}
}

// envelope is the wire shape every REST response shares.
type envelope struct {
	Valid    bool            `json:"valid_response"`
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error"`
}

// Search queries materials matching criteria and returns raw records with
// the requested properties. limit <= 0 means no client-side cap.
//
// Errors:
//   - *RemoteError for HTTP or in-band remote failures, unretried.
//   - plain errors for request construction / decoding problems.
func (c *Client) Search(ctx context.Context, criteria map[string]any, properties []string, limit int) ([]normalize.Record, error) {
	raw, err := c.query(ctx, criteria, properties)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber() // keep numeric precision; display/export decide formatting

	var records []normalize.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("mp: decode records: %w", err)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetByID fetches the single record for one material id.
func (c *Client) GetByID(ctx context.Context, id string) (normalize.Record, error) {
	records, err := c.Search(ctx, map[string]any{"material_id": id}, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return records[0], nil
}

// Entry is one computed entry of a chemical system, the input unit for
// phase-diagram construction (which happens elsewhere).
type Entry struct {
	MaterialID    string             `json:"material_id"`
	Formula       string             `json:"formula_pretty"`
	Energy        float64            `json:"energy"`
	EnergyPerAtom float64            `json:"energy_per_atom"`
	Composition   map[string]float64 `json:"composition"`
}

// Entries fetches all computed entries for the chemical system spanned by
// elements. Element order does not matter; the chemsys identifier is sorted.
func (c *Client) Entries(ctx context.Context, elements []string) ([]Entry, error) {
	if len(elements) == 0 {
		return nil, errors.New("mp: entries requires at least one element")
	}

	chemsys := canonicalChemsys(elements)
	u := c.baseURL + "/rest/v2/materials/" + url.PathEscape(chemsys) + "/entries"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("mp: build entries request: %w", err)
	}

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("mp: decode entries: %w", err)
	}
	return entries, nil
}

// query POSTs to the /rest/v2/query endpoint and returns the raw response
// payload from the envelope.
func (c *Client) query(ctx context.Context, criteria map[string]any, properties []string) (json.RawMessage, error) {
	critJSON, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("mp: encode criteria: %w", err)
	}

	form := url.Values{}
	form.Set("criteria", string(critJSON))
	if len(properties) > 0 {
		propJSON, err := json.Marshal(properties)
		if err != nil {
			return nil, fmt.Errorf("mp: encode properties: %w", err)
		}
		form.Set("properties", string(propJSON))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v2/query", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("mp: build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// do executes a request, validates the envelope, and records metrics for the
// attempt. It returns the envelope's response payload.
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	reqDur := time.Since(start)
	if err != nil {
		metrics.RecordHTTP(c.job, 0, err, reqDur, -1, -1)
		return nil, fmt.Errorf("mp: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	respDur := time.Since(start)
	metrics.RecordHTTP(c.job, resp.StatusCode, readErr, reqDur, respDur, int64(len(body)))
	if readErr != nil {
		return nil, fmt.Errorf("mp: read response: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{Status: resp.StatusCode, Message: remoteMessage(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("mp: decode envelope: %w", err)
	}
	if !env.Valid {
		return nil, &RemoteError{Message: env.Error}
	}
	return env.Response, nil
}

// remoteMessage pulls the error text out of a failure body, tolerating
// non-JSON responses from proxies.
func remoteMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// canonicalChemsys joins element symbols into the sorted "Li-Fe-O" form the
// API expects ("Fe-Li-O" after sorting).
func canonicalChemsys(elements []string) string {
	cp := make([]string, 0, len(elements))
	for _, e := range elements {
		e = strings.TrimSpace(e)
		if e != "" {
			cp = append(cp, e)
		}
	}
	sort.Strings(cp)
	return strings.Join(cp, "-")
}
