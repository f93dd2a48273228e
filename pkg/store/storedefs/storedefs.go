// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoSnapshot is returned by Store.Snapshot when there is no snapshot
// stored under the requested id.
var ErrNoSnapshot = errors.New("no such snapshot")

// Store is an interface satisfied by the storage service.
type Store interface {
	Snapshot(id string) ([]byte, error)
	SetSnapshot(id string, data []byte) error
	DelSnapshot(id string) error
	SnapshotIDs() ([]string, error)
}
