package mockads

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/models"
)

// fakeClock drives the import state machine from tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestServer(t *testing.T, token string) (*Server, *fakeClock, *httptest.Server) {
	t.Helper()

	srv := New(&Config{Token: token, ImportDuration: 100 * time.Minute})
	clk := &fakeClock{t: time.Now()}
	srv.now = clk.Now

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, clk, ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	payload, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestImportLifecycleProgression(t *testing.T) {
	_, clk, ts := newTestServer(t, "")

	var activation models.ActivationResult
	resp := postJSON(t, ts, "/v1/mcp/profiles/activate", map[string]string{"profile_id": "prof-na-1001"}, &activation)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d", resp.StatusCode)
	}
	if activation.Status != models.StatusPending {
		t.Errorf("activation status = %q, want pending", activation.Status)
	}
	if activation.EstimatedMinutes == nil || *activation.EstimatedMinutes != 100 {
		t.Errorf("estimated_minutes = %v, want 100", activation.EstimatedMinutes)
	}

	steps := []struct {
		advance time.Duration
		reason  string
	}{
		{0, "pending"},
		{20 * time.Minute, "retrieving"},
		{40 * time.Minute, "importing"},
	}
	for _, step := range steps {
		clk.Advance(step.advance)

		var status models.ProfileStatus
		getJSON(t, ts, "/v1/mcp/profiles/prof-na-1001/status", &status)
		if status.Available {
			t.Errorf("at %s: available = true, want false", step.reason)
		}
		if status.Reason != step.reason {
			t.Errorf("reason = %q, want %q", status.Reason, step.reason)
		}
		if status.EstimatedMinutes == nil {
			t.Errorf("at %s: estimated_minutes missing", step.reason)
		}
	}

	// import_progress counters only appear mid-import
	var mid models.ProfileStatus
	getJSON(t, ts, "/v1/mcp/profiles/prof-na-1001/status", &mid)
	if mid.ImportProgress == nil {
		t.Fatal("import_progress missing during import")
	}
	if mid.ImportProgress.ExpectedDays != expectedDays {
		t.Errorf("expected_days = %d, want %d", mid.ImportProgress.ExpectedDays, expectedDays)
	}
	if mid.ImportProgress.ProgressPercent != 60 {
		t.Errorf("progress_percent = %v, want 60", mid.ImportProgress.ProgressPercent)
	}

	clk.Advance(41 * time.Minute)
	var done models.ProfileStatus
	getJSON(t, ts, "/v1/mcp/profiles/prof-na-1001/status", &done)
	if !done.Available {
		t.Error("available = false after import duration elapsed")
	}
	if done.ImportProgress != nil {
		t.Error("import_progress present after ready")
	}
}

func TestActivateAlreadyActivated(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	var out map[string]interface{}
	resp := postJSON(t, ts, "/v1/mcp/profiles/activate", map[string]string{"profile_id": "prof-eu-2001"}, &out)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if out["success"] != false {
		t.Errorf("success = %v, want false", out["success"])
	}
	if out["error"] != "profile already activated" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestDeactivateIsIdempotent(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	for i := 0; i < 2; i++ {
		var out models.DeactivationResult
		resp := postJSON(t, ts, "/v1/mcp/profiles/deactivate", map[string]string{"profile_id": "prof-eu-2001"}, &out)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("deactivate #%d status = %d", i+1, resp.StatusCode)
		}
		if out.Message != "Profile removed from MCP querying" {
			t.Errorf("message = %q", out.Message)
		}
	}

	var status models.ProfileStatus
	getJSON(t, ts, "/v1/mcp/profiles/prof-eu-2001/status", &status)
	if status.Available || status.Reason != string(models.StatusNotActivated) {
		t.Errorf("after deactivate: available=%v reason=%q", status.Available, status.Reason)
	}
}

func TestBearerAuth(t *testing.T) {
	_, _, ts := newTestServer(t, "sekret")

	resp := getJSON(t, ts, "/v1/mcp/profiles", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/v1/mcp/profiles", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", authed.StatusCode)
	}

	// ping stays open for health checks
	ping := getJSON(t, ts, "/ping", nil)
	if ping.StatusCode != http.StatusOK {
		t.Errorf("ping status = %d", ping.StatusCode)
	}
}

func TestReadsReturnNotReadyEnvelope(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	postJSON(t, ts, "/v1/mcp/profiles/activate", map[string]string{"profile_id": "prof-na-1001"}, nil)

	var out map[string]interface{}
	resp := getJSON(t, ts, "/v1/mcp/profiles/prof-na-1001/campaigns", &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if out["data_not_ready"] != true {
		t.Fatalf("data_not_ready = %v", out["data_not_ready"])
	}
	if _, ok := out["estimated_minutes"]; !ok {
		t.Error("estimated_minutes missing for activated profile")
	}

	// not-activated profiles carry no estimate
	var cold map[string]interface{}
	getJSON(t, ts, "/v1/mcp/profiles/prof-fe-3001/performance?start_date=2026-08-01&end_date=2026-08-07", &cold)
	if cold["data_not_ready"] != true {
		t.Fatalf("data_not_ready = %v", cold["data_not_ready"])
	}
	if _, ok := cold["estimated_minutes"]; ok {
		t.Error("estimated_minutes present for not-activated profile")
	}
}

func TestPerformanceValidation(t *testing.T) {
	_, _, ts := newTestServer(t, "")

	cases := []struct {
		name  string
		query string
	}{
		{"bad start", "start_date=nope&end_date=2026-08-07"},
		{"bad end", "start_date=2026-08-01&end_date=nope"},
		{"inverted range", "start_date=2026-08-07&end_date=2026-08-01"},
		{"range too long", "start_date=2026-01-01&end_date=2026-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := getJSON(t, ts, "/v1/mcp/profiles/prof-eu-2001/performance?"+tc.query, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

// TestEndToEndWithClient runs the real API client against the mock to keep
// the two sides of the wire contract honest with each other.
func TestEndToEndWithClient(t *testing.T) {
	srv, clk, ts := newTestServer(t, "sekret")
	client := api.NewClientWith(ts.URL+"/v1", "sekret")

	list, err := client.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if list.Count != 3 || len(list.Profiles) != 3 {
		t.Fatalf("count = %d, profiles = %d", list.Count, len(list.Profiles))
	}
	for i, p := range list.Profiles {
		if p.Number != i+1 {
			t.Errorf("profile %s number = %d, want %d", p.ID, p.Number, i+1)
		}
	}
	if !list.Profiles[1].IsReady {
		t.Error("seeded EU profile should be ready")
	}

	activation, err := client.ActivateProfile("prof-na-1001")
	if err != nil {
		t.Fatalf("ActivateProfile: %v", err)
	}
	if activation.ProfileID != "prof-na-1001" || activation.Status != models.StatusPending {
		t.Errorf("activation = %+v", activation)
	}

	// reads during import surface as NotReadyError, never APIError
	_, err = client.ListCampaigns("prof-na-1001", "")
	var notReady *api.NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("mid-import ListCampaigns error = %v, want NotReadyError", err)
	}

	clk.Advance(2 * srv.cfg.ImportDuration)

	campaigns, err := client.ListCampaigns("prof-na-1001", "")
	if err != nil {
		t.Fatalf("ListCampaigns after ready: %v", err)
	}
	if len(campaigns) == 0 {
		t.Fatal("no campaigns after import completed")
	}

	updated, err := client.UpdateCampaignState(campaigns[0].ID, "paused")
	if err != nil {
		t.Fatalf("UpdateCampaignState: %v", err)
	}
	if updated.State != "paused" {
		t.Errorf("state = %q, want paused", updated.State)
	}

	keywords, err := client.ListKeywords(campaigns[0].ID)
	if err != nil {
		t.Fatalf("ListKeywords: %v", err)
	}
	if len(keywords) == 0 {
		t.Fatal("no keywords")
	}

	kw, err := client.UpdateKeywordBid(keywords[0].ID, 2.50)
	if err != nil {
		t.Fatalf("UpdateKeywordBid: %v", err)
	}
	if kw.Bid != 2.50 {
		t.Errorf("bid = %v, want 2.50", kw.Bid)
	}

	report, err := client.GetPerformance("prof-na-1001", "2026-08-01", "2026-08-07")
	if err != nil {
		t.Fatalf("GetPerformance: %v", err)
	}
	if len(report.Rows) != 7 {
		t.Errorf("rows = %d, want 7", len(report.Rows))
	}
	again, err := client.GetPerformance("prof-na-1001", "2026-08-01", "2026-08-07")
	if err != nil {
		t.Fatal(err)
	}
	if report.Rows[0] != again.Rows[0] {
		t.Error("synthetic metrics changed between identical calls")
	}

	_, err = client.UpdateCampaignState("no-such-campaign", "enabled")
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("missing campaign error = %v, want 404 APIError", err)
	}
}
