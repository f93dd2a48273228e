package store_test

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
	"src.devlab.sh/pkg/store"
	"src.devlab.sh/pkg/store/storetest"
	"src.devlab.sh/pkg/testutil"
)

func TestSnapshot(t *testing.T) {
	storetest.TestSnapshot(t, store.MustTempStore(t))
}

func TestSnapshot_KeysArePrefixed(t *testing.T) {
	dbPath := filepath.Join(testutil.TempDir(t), "db")
	st, err := store.NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	st.SetSnapshot("abc", []byte("{}"))
	st.Close()

	db, err := bolt.Open(dbPath, 0644, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte("snapshot")).Get([]byte("calc_abc")); string(v) != "{}" {
			t.Errorf("raw value under calc_abc is %q", v)
		}
		return nil
	})
}

func TestSnapshot_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(testutil.TempDir(t), "db")
	st, err := store.NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	st.SetSnapshot("s", []byte(`{"boxes":{}}`))
	st.Close()

	st, err = store.NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if got, err := st.Snapshot("s"); err != nil || string(got) != `{"boxes":{}}` {
		t.Errorf("after reopen got (%q, %v)", got, err)
	}
}
