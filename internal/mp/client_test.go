package mp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/johnwroge/Materials-Research/internal/config"
)

func testClient(srvURL string) *Client {
	return New(config.Config{
		APIKey:  "test-key",
		BaseURL: srvURL,
		Timeout: 5 * time.Second,
	})
}

func TestSearch_DecodesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v2/query" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		var criteria map[string]any
		if err := json.Unmarshal([]byte(r.PostForm.Get("criteria")), &criteria); err != nil {
			t.Errorf("criteria not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"valid_response": true,
			"response": [
				{"material_id": "mp-1", "band_gap": 1.2, "elasticity": {"K_VRH": 120}},
				{"material_id": "mp-2", "band_gap": 0}
			]
		}`))
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).Search(context.Background(),
		map[string]any{"elements": map[string]any{"$all": []string{"Li"}}},
		[]string{"material_id", "band_gap"}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["material_id"] != "mp-1" {
		t.Fatalf("first record = %v", records[0])
	}
	// Nested mappings survive decoding as map[string]any.
	el, ok := records[0]["elasticity"].(map[string]any)
	if !ok {
		t.Fatalf("elasticity not a map: %T", records[0]["elasticity"])
	}
	// json.Number keeps the raw literal.
	if el["K_VRH"].(json.Number).String() != "120" {
		t.Fatalf("K_VRH = %v", el["K_VRH"])
	}
}

func TestSearch_AppliesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid_response": true, "response": [{"a":1},{"a":2},{"a":3}]}`))
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).Search(context.Background(), map[string]any{}, nil, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestSearch_HTTPFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"valid_response": false, "error": "API key invalid"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), map[string]any{}, nil, 0)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if re.Status != http.StatusForbidden {
		t.Fatalf("Status = %d, want 403", re.Status)
	}
	if re.Message != "API key invalid" {
		t.Fatalf("Message = %q", re.Message)
	}
}

func TestSearch_InBandFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid_response": false, "error": "query too broad"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Search(context.Background(), map[string]any{}, nil, 0)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if re.Status != 0 || re.Message != "query too broad" {
		t.Fatalf("RemoteError = %+v", re)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"valid_response": true, "response": []}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetByID(context.Background(), "mp-404")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntries_SortsChemsys(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"valid_response": true,
			"response": [
				{"material_id": "mp-19017", "formula_pretty": "LiFePO4",
				 "energy": -191.33, "energy_per_atom": -6.83,
				 "composition": {"Li": 4, "Fe": 4, "P": 4, "O": 16}}
			]
		}`))
	}))
	defer srv.Close()

	entries, err := testClient(srv.URL).Entries(context.Background(), []string{"O", "Li", "Fe", "P"})
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if gotPath != "/rest/v2/materials/Fe-Li-O-P/entries" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(entries) != 1 || entries[0].Formula != "LiFePO4" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Composition["O"] != 16 {
		t.Fatalf("composition = %v", entries[0].Composition)
	}
}

func TestEntries_RequiresElements(t *testing.T) {
	if _, err := testClient("http://unused").Entries(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty element list")
	}
}
