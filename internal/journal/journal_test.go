package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_RecordAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()
	entries := []Entry{
		{At: base, Action: ActionLogin, Outcome: OutcomeOK},
		{At: base.Add(time.Second), Action: ActionCreate, Outcome: OutcomeOK, Detail: "Cabo"},
		{At: base.Add(2 * time.Second), Action: ActionDelete, ProductID: "42", Outcome: OutcomeFailed, Detail: "status 500"},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Action != ActionDelete || got[0].ProductID != "42" || got[0].Outcome != OutcomeFailed {
		t.Errorf("newest entry = %+v", got[0])
	}
	if !got[0].At.Equal(base.Add(2 * time.Second)) {
		t.Errorf("At = %v", got[0].At)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Errorf("expected distinct generated ids, got %q and %q", got[0].ID, got[1].ID)
	}
	if got[1].Detail != "Cabo" {
		t.Errorf("second entry = %+v", got[1])
	}
}

func TestStore_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Record(context.Background(), Entry{Action: ActionExport, Outcome: OutcomeOK}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.List(context.Background(), 0)
	if err != nil || len(got) != 1 || got[0].Action != ActionExport {
		t.Fatalf("List = %+v, %v", got, err)
	}
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	if err := r.Record(context.Background(), Entry{Action: ActionLogin}); err != nil {
		t.Fatal(err)
	}
}
