package identity

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"src.devlab.sh/pkg/must"
	"src.devlab.sh/pkg/testutil"
)

func TestFileProvider_Stable(t *testing.T) {
	dir := filepath.Join(testutil.TempDir(t), "sub")
	p := FileProvider{dir}

	id, err := p.ClientID()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("id %q is not a uuid: %v", id, err)
	}
	again, err := FileProvider{dir}.ClientID()
	if err != nil || again != id {
		t.Errorf("second call -> (%q, %v), want (%q, nil)", again, err, id)
	}
}

func TestFileProvider_UsesExistingID(t *testing.T) {
	dir := testutil.TempDir(t)
	must.WriteFile(filepath.Join(dir, FileName), "abc123\n")

	id, err := FileProvider{dir}.ClientID()
	if err != nil || id != "abc123" {
		t.Errorf("got (%q, %v), want (\"abc123\", nil)", id, err)
	}
}

func TestFileProvider_ConcurrentCallersAgree(t *testing.T) {
	dir := testutil.TempDir(t)
	ids := make([]string, 8)
	var wg sync.WaitGroup
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], _ = FileProvider{dir}.ClientID()
		}()
	}
	wg.Wait()
	for _, id := range ids {
		if id == "" || id != ids[0] {
			t.Fatalf("ids disagree: %q", ids)
		}
	}
}

func TestStatic(t *testing.T) {
	if id, _ := Static("x").ClientID(); id != "x" {
		t.Errorf("got %q", id)
	}
}
