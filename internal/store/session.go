package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"hdnotes-cli/internal/model"
)

// SessionCache persists the current session so a later process can
// restore it. The file holds a bearer token, so it is written 0600.
//
// An empty Dir resolves to the config dir at call time (so the
// HDNOTES_CONFIG_DIR test override keeps working).
type SessionCache struct {
	Dir string
}

func (c SessionCache) path() (string, error) {
	dir := c.Dir
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, "session.json"), nil
}

// LoadSession returns the cached session, or (nil, nil) when none is
// cached. The token inside has not been revalidated; callers must
// treat it as a hint, not a live session.
func (c SessionCache) LoadSession() (*model.Session, error) {
	path, err := c.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		// A corrupt cache is the same as no cache.
		return nil, nil
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

func (c SessionCache) SaveSession(sess *model.Session) error {
	path, err := c.path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "session.json.*.tmp", path, b, 0o600)
}

func (c SessionCache) ClearSession() error {
	path, err := c.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
