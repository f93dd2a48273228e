// Package identity provides the id a device attaches to the state snapshots
// it broadcasts, so that it can recognize and ignore its own messages.
package identity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"src.devlab.sh/pkg/logutil"
	"src.devlab.sh/pkg/sys"
)

var logger = logutil.GetLogger("identity")

// Provider provides a client id.
type Provider interface {
	ClientID() (string, error)
}

// Static is a Provider that always returns the same id.
type Static string

// ClientID returns the id itself.
func (s Static) ClientID() (string, error) { return string(s), nil }

// FileName is the name of the file in which FileProvider keeps the id.
const FileName = "client-id"

// FileProvider keeps a randomly generated id in a file under Dir. The id is
// generated the first time it is asked for and reused afterwards, also by
// other processes using the same directory.
type FileProvider struct {
	Dir string
}

// ClientID returns the stored id, generating and storing one first if there
// is none.
func (p FileProvider) ClientID() (string, error) {
	if err := os.MkdirAll(p.Dir, 0700); err != nil {
		return "", err
	}
	name := filepath.Join(p.Dir, FileName)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()
	// Processes starting at the same time must agree on one id.
	if err := sys.Lock(f); err != nil {
		return "", fmt.Errorf("lock %s: %w", name, err)
	}
	defer sys.Unlock(f)

	content, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	if id := string(bytes.TrimSpace(content)); id != "" {
		return id, nil
	}

	id := uuid.NewString()
	if _, err := f.WriteString(id + "\n"); err != nil {
		return "", err
	}
	logger.Infow("generated client id", "id", id, "file", name)
	return id, nil
}
