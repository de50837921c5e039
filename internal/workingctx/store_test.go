package workingctx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adpilothq/adpilot-cli/internal/models"
)

func testContext() *models.WorkingContext {
	return &models.WorkingContext{
		ProfileID:     "b2",
		ProfileNumber: 2,
		ProfileName:   "Acme DE",
		Region:        "EU",
		SetAt:         time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC),
	}
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStoreAt(filepath.Join(t.TempDir(), "context.json"))
}

func TestFileStore_WriteThenRead(t *testing.T) {
	s := newTestStore(t)
	want := testContext()

	if err := s.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, ok := s.Read()
	if !ok {
		t.Fatal("Read returned unset after Write")
	}
	if got.ProfileID != want.ProfileID ||
		got.ProfileNumber != want.ProfileNumber ||
		got.ProfileName != want.ProfileName ||
		got.Region != want.Region {
		t.Errorf("Read = %+v, want %+v", got, want)
	}
	if !got.SetAt.Equal(want.SetAt) {
		t.Errorf("SetAt did not survive the round trip: got %v, want %v", got.SetAt, want.SetAt)
	}
}

func TestFileStore_ReadMissing(t *testing.T) {
	s := newTestStore(t)
	if wc, ok := s.Read(); ok {
		t.Errorf("Read of missing file = %+v, want unset", wc)
	}
}

func TestFileStore_ReadCorrupt(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if wc, ok := s.Read(); ok {
		t.Errorf("Read of corrupt file = %+v, want unset", wc)
	}
}

func TestFileStore_ReadToleratesUnknownFields(t *testing.T) {
	s := newTestStore(t)
	record := `{"profile_id":"b2","profile_number":2,"profile_name":"Acme DE","region":"EU","set_at":"2026-08-14T09:30:00Z","future_field":"ignored"}`
	if err := os.WriteFile(s.path, []byte(record), 0600); err != nil {
		t.Fatal(err)
	}

	wc, ok := s.Read()
	if !ok {
		t.Fatal("Read rejected a record with unknown fields")
	}
	if wc.ProfileID != "b2" {
		t.Errorf("ProfileID = %s, want b2", wc.ProfileID)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s := newTestStore(t)
	first := testContext()
	if err := s.Write(first); err != nil {
		t.Fatal(err)
	}

	second := testContext()
	second.ProfileID = "c3"
	second.ProfileNumber = 3
	if err := s.Write(second); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Read()
	if !ok || got.ProfileID != "c3" {
		t.Errorf("Read after overwrite = %+v, want profile c3", got)
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write(testContext()); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("first Clear: %v", err)
	}
	if _, ok := s.Read(); ok {
		t.Error("Read after Clear returned a context")
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestFileStore_NoTempFileLeftBehind(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write(testContext()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "context.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("state directory contains %v, want only context.json", names)
	}
}

func TestMemStore(t *testing.T) {
	s := &MemStore{}

	if _, ok := s.Read(); ok {
		t.Error("empty MemStore reported a context")
	}
	if err := s.Write(testContext()); err != nil {
		t.Fatal(err)
	}
	wc, ok := s.Read()
	if !ok || wc.ProfileID != "b2" {
		t.Errorf("Read = %+v, want profile b2", wc)
	}

	// Mutating the returned copy must not touch the stored record.
	wc.ProfileID = "mutated"
	again, _ := s.Read()
	if again.ProfileID != "b2" {
		t.Error("Read returned a shared pointer instead of a copy")
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Read(); ok {
		t.Error("Read after Clear returned a context")
	}
}
