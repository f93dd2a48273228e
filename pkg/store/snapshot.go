package store

import (
	"bytes"
	"sort"

	bolt "go.etcd.io/bbolt"
	. "src.devlab.sh/pkg/store/storedefs"
)

const (
	bucketSnapshot = "snapshot"
	keyPrefix      = "calc_"
)

func init() {
	initDB["initialize snapshot table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshot))
		return err
	}
}

func snapshotKey(id string) []byte { return []byte(keyPrefix + id) }

// Snapshot gets the snapshot stored under the given id.
func (s *dbStore) Snapshot(id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshot))
		v := b.Get(snapshotKey(id))
		if v == nil {
			return ErrNoSnapshot
		}
		// Values returned by bolt are only valid within the transaction.
		data = bytes.Clone(v)
		return nil
	})
	return data, err
}

// SetSnapshot stores a snapshot under the given id, replacing any previous
// one.
func (s *dbStore) SetSnapshot(id string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshot))
		return b.Put(snapshotKey(id), data)
	})
}

// DelSnapshot deletes the snapshot stored under the given id. Deleting a
// nonexistent snapshot is not an error.
func (s *dbStore) DelSnapshot(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshot))
		return b.Delete(snapshotKey(id))
	})
}

// SnapshotIDs returns the ids of all stored snapshots, sorted.
func (s *dbStore) SnapshotIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketSnapshot)).Cursor()
		p := []byte(keyPrefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			ids = append(ids, string(k[len(p):]))
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}
