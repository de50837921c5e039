package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListProfiles_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/mcp/profiles" {
			t.Errorf("path = %s, want /v1/mcp/profiles", r.URL.Path)
		}
		io.WriteString(w, `{"profiles":[{"number":1,"id":"a1","name":"Acme US","region":"NA","mcp_activated":false,"mcp_data_status":"not_activated"}],"count":1}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok-123")
	list, err := c.ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if list.Count != 1 || len(list.Profiles) != 1 || list.Profiles[0].ID != "a1" {
		t.Errorf("unexpected listing: %+v", list)
	}
}

func TestMakeRequest_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"error":"profile already activated"}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok")
	_, err := c.ActivateProfile("a1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "profile already activated" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestMakeRequest_SuccessFalseOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"quota exceeded"}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok")
	_, err := c.ListProfiles()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("Message = %q, want quota exceeded", apiErr.Message)
	}
}

func TestMakeRequest_DataNotReady(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantEst  bool
		estValue int
	}{
		{
			name:     "with estimate",
			body:     `{"data_not_ready":true,"message":"import running","estimated_minutes":12}`,
			wantEst:  true,
			estValue: 12,
		},
		{
			name:    "without estimate",
			body:    `{"data_not_ready":true,"message":"import running"}`,
			wantEst: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClientWith(srv.URL+"/v1", "tok")
			_, err := c.GetPerformance("b2", "2026-08-01", "2026-08-14")

			var nr *NotReadyError
			if !errors.As(err, &nr) {
				t.Fatalf("error = %v, want *NotReadyError", err)
			}
			if tt.wantEst {
				if nr.EstimatedMinutes == nil || *nr.EstimatedMinutes != tt.estValue {
					t.Errorf("EstimatedMinutes = %v, want %d", nr.EstimatedMinutes, tt.estValue)
				}
			} else if nr.EstimatedMinutes != nil {
				t.Errorf("EstimatedMinutes = %v, want nil", *nr.EstimatedMinutes)
			}

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				t.Error("not-ready must never be classified as *APIError")
			}
		})
	}
}

func TestActivateProfile_ForwardsProfileID(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"profile_id":"a1","status":"pending","estimated_minutes":25}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok")
	res, err := c.ActivateProfile("a1")
	if err != nil {
		t.Fatalf("ActivateProfile: %v", err)
	}
	if gotBody["profile_id"] != "a1" {
		t.Errorf("request body = %v, want profile_id a1", gotBody)
	}
	if res.Status != "pending" || res.EstimatedMinutes == nil || *res.EstimatedMinutes != 25 {
		t.Errorf("result = %+v", res)
	}
}

func TestUpdateKeywordBid_PatchBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"id":"kw-7","campaign_id":"cmp-1","keyword_text":"wireless earbuds","match_type":"broad","state":"enabled","bid":1.35}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok")
	kw, err := c.UpdateKeywordBid("kw-7", 1.35)
	if err != nil {
		t.Fatalf("UpdateKeywordBid: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/v1/mcp/keywords/kw-7" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["bid"] != 1.35 {
		t.Errorf("body = %v, want bid 1.35", gotBody)
	}
	if kw.Bid != 1.35 {
		t.Errorf("keyword bid = %v, want 1.35", kw.Bid)
	}
}

func TestSetAgentInfo_Headers(t *testing.T) {
	var hdr http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr = r.Header.Clone()
		io.WriteString(w, `{"profiles":[],"count":0}`)
	}))
	defer srv.Close()

	c := NewClientWith(srv.URL+"/v1", "tok")
	c.SetAgentInfo("test-agent", "test-model", "sess-1")
	if _, err := c.ListProfiles(); err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}

	if hdr.Get("X-Created-Via") != "mcp" ||
		hdr.Get("X-Agent-Name") != "test-agent" ||
		hdr.Get("X-Agent-Model") != "test-model" ||
		hdr.Get("X-Agent-Session-ID") != "sess-1" {
		t.Errorf("agent headers missing: %v", hdr)
	}
}
