package profiles

import (
	"errors"
	"testing"

	"github.com/adpilothq/adpilot-cli/internal/models"
)

type fakeLister struct {
	list *models.ProfileList
	err  error
}

func (f *fakeLister) ListProfiles() (*models.ProfileList, error) {
	return f.list, f.err
}

func testListing() *models.ProfileList {
	return &models.ProfileList{
		Profiles: []models.Profile{
			{Number: 1, ID: "a1", Name: "Acme US", Region: "NA", MCPActivated: false, MCPDataStatus: models.StatusNotActivated},
			{Number: 2, ID: "b2", Name: "Acme DE", Region: "EU", MCPActivated: true, MCPDataStatus: models.StatusReady, IsReady: true},
		},
		Count: 2,
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		ref       string
		want      Ordinal
		isOrdinal bool
	}{
		{"2", 2, true},
		{"#2", 2, true},
		{" #3 ", 3, true},
		{"0", 0, true},
		{"-1", -1, true},
		{"amzn1.ads.account.x9", 0, false},
		{"#abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseOrdinal(tt.ref)
		if ok != tt.isOrdinal || got != tt.want {
			t.Errorf("ParseOrdinal(%q) = (%d, %v), want (%d, %v)", tt.ref, got, ok, tt.want, tt.isOrdinal)
		}
	}
}

func TestResolve_OrdinalAndHashAgree(t *testing.T) {
	r := NewResolver(&fakeLister{list: testListing()})

	for _, ref := range []string{"2", "#2"} {
		id, ok := r.Resolve(ref)
		if !ok {
			t.Fatalf("Resolve(%q) did not resolve", ref)
		}
		if id.ID != "b2" || id.Name != "Acme DE" || id.Region != "EU" {
			t.Errorf("Resolve(%q) = %+v, want id b2 / Acme DE / EU", ref, id)
		}
	}
}

func TestResolve_UnknownOrdinal(t *testing.T) {
	r := NewResolver(&fakeLister{list: testListing()})

	for _, ref := range []string{"9", "#9", "0"} {
		if id, ok := r.Resolve(ref); ok {
			t.Errorf("Resolve(%q) resolved to %+v, want no resolution", ref, id)
		}
	}
}

func TestResolve_ListFetchFails(t *testing.T) {
	r := NewResolver(&fakeLister{err: errors.New("backend down")})

	if id, ok := r.Resolve("2"); ok {
		t.Errorf("Resolve with failing listing resolved to %+v, want no resolution", id)
	}
}

func TestResolve_IdentifierPassthrough(t *testing.T) {
	// The listing is intentionally failing: identifier references must not
	// trigger a fetch at all.
	r := NewResolver(&fakeLister{err: errors.New("backend down")})

	id, ok := r.Resolve("amzn1.ads.account.x9")
	if !ok {
		t.Fatal("identifier reference did not resolve")
	}
	if id.ID != "amzn1.ads.account.x9" || id.Name != "" || id.Region != "" {
		t.Errorf("identifier passthrough = %+v, want verbatim id with empty metadata", id)
	}
}

func TestLookup(t *testing.T) {
	r := NewResolver(&fakeLister{list: testListing()})

	tests := []struct {
		ref    string
		wantID string
		found  bool
	}{
		{"1", "a1", true},
		{"#2", "b2", true},
		{"b2", "b2", true},
		{"9", "", false},
		{"nope", "", false},
	}

	for _, tt := range tests {
		p, ok := r.Lookup(tt.ref)
		if ok != tt.found {
			t.Errorf("Lookup(%q) found=%v, want %v", tt.ref, ok, tt.found)
			continue
		}
		if ok && p.ID != tt.wantID {
			t.Errorf("Lookup(%q) = %s, want %s", tt.ref, p.ID, tt.wantID)
		}
	}
}

func TestLookup_ListFetchFails(t *testing.T) {
	r := NewResolver(&fakeLister{err: errors.New("backend down")})
	if _, ok := r.Lookup("b2"); ok {
		t.Error("Lookup with failing listing reported found")
	}
}
