// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.devlab.sh/pkg/store/storedefs"
)

// TestSnapshot tests the snapshot functionality of a Store.
func TestSnapshot(t *testing.T, store storedefs.Store) {
	_, err := store.Snapshot("session")
	if !errors.Is(err, storedefs.ErrNoSnapshot) {
		t.Errorf("Snapshot of missing id -> error %v, want ErrNoSnapshot", err)
	}

	data := []byte(`{"boxes":{"reps":{"left":"10","right":"2"}}}`)
	if err := store.SetSnapshot("session", data); err != nil {
		t.Errorf("SetSnapshot -> error %v", err)
	}
	got, err := store.Snapshot("session")
	if err != nil || string(got) != string(data) {
		t.Errorf("Snapshot -> (%q, %v), want (%q, nil)", got, err, data)
	}

	newData := []byte(`{"boxes":{}}`)
	store.SetSnapshot("session", newData)
	if got, _ := store.Snapshot("session"); string(got) != string(newData) {
		t.Errorf("Snapshot after overwrite -> %q, want %q", got, newData)
	}

	store.SetSnapshot("other", data)
	ids, err := store.SnapshotIDs()
	if diff := cmp.Diff([]string{"other", "session"}, ids); err != nil || diff != "" {
		t.Errorf("SnapshotIDs -> error %v, diff (-want +got):\n%s", err, diff)
	}

	if err := store.DelSnapshot("session"); err != nil {
		t.Errorf("DelSnapshot -> error %v", err)
	}
	if _, err := store.Snapshot("session"); !errors.Is(err, storedefs.ErrNoSnapshot) {
		t.Errorf("Snapshot after delete -> error %v, want ErrNoSnapshot", err)
	}
	if err := store.DelSnapshot("nonexistent"); err != nil {
		t.Errorf("DelSnapshot of missing id -> error %v", err)
	}
}
