// Package session persists Zabbix session IDs and legacy auth tokens on
// disk with enforced secure file permissions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// SecureMode is the only file mode session and auth files may have on
// POSIX systems.
const SecureMode fs.FileMode = 0o600

// Session is one stored (username, session id) pair.
type Session struct {
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
}

// File is an on-disk mapping of server URL to the sessions known for it.
type File struct {
	sessions map[string][]Session
	path     string
}

// NewFile returns an empty session file bound to path. The path may be
// empty; Save then fails until SetPath is called.
func NewFile(path string) *File {
	return &File{sessions: make(map[string][]Session), path: path}
}

// Path returns the file path the store reads from and writes to.
func (f *File) Path() string { return f.path }

// SetPath rebinds the store to a new path.
func (f *File) SetPath(path string) { f.path = path }

// Get returns the stored session for (url, username), or ok=false.
func (f *File) Get(url, username string) (Session, bool) {
	for _, s := range f.sessions[url] {
		if s.Username == username {
			return s, true
		}
	}
	return Session{}, false
}

// Set stores or replaces the session for (url, username).
func (f *File) Set(url, username, sessionID string) {
	list := f.sessions[url]
	for i, s := range list {
		if s.Username == username {
			list[i].SessionID = sessionID
			f.sessions[url] = list
			return
		}
	}
	f.sessions[url] = append(list, Session{Username: username, SessionID: sessionID})
}

// Load reads a session file from path. A missing file yields
// errs.ErrSessionFileNotFound; a file with insecure permissions yields
// errs.ErrSessionFilePermissions unless allowInsecure is set.
func Load(path string, allowInsecure bool) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.New(errs.ErrSessionFileNotFound, "session file %s does not exist", path)
		}
		return nil, errs.Wrap(errs.ErrSessionFile, err, "failed to stat session file %s", path)
	}
	if err := checkSecure(info.Mode(), path, allowInsecure); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrSessionFile, err, "failed to read session file %s", path)
	}

	f := NewFile(path)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.sessions); err != nil {
			return nil, errs.Wrap(errs.ErrSessionFile, err, "failed to parse session file %s", path)
		}
	}
	return f, nil
}

// Save writes the sessions to the bound path. The write is atomic: a
// sibling temp file is created with secure permissions, written, then
// renamed over the target. Existing files with insecure permissions are
// repaired to 0600 before the rename unless allowInsecure is set.
func (f *File) Save(allowInsecure bool) error {
	if f.path == "" {
		return errs.New(errs.ErrSessionFile, "cannot save session file: no path set")
	}

	if info, err := os.Stat(f.path); err == nil {
		if !hasSecureMode(info.Mode()) && !allowInsecure {
			if err := os.Chmod(f.path, SecureMode); err != nil {
				return errs.Wrap(errs.ErrSessionFilePermissions, err,
					"failed to set secure permissions on %s", f.path)
			}
		}
	}

	data, err := json.Marshal(f.sessions)
	if err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to encode sessions")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp*")
	if err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	// Tighten permissions before any secret bytes hit the file.
	if err := tmp.Chmod(SecureMode); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrSessionFile, err, "failed to set permissions on %s", tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrSessionFile, err, "failed to write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to close %s", tmpName)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to rename %s to %s", tmpName, f.path)
	}
	return nil
}

func checkSecure(mode fs.FileMode, path string, allowInsecure bool) error {
	if allowInsecure || hasSecureMode(mode) {
		return nil
	}
	return errs.New(errs.ErrSessionFilePermissions,
		"%s must have %o permissions, has %o; refusing to load", path, SecureMode, mode.Perm())
}

// hasSecureMode reports whether the file mode is exactly 0600. Windows
// has no POSIX permission bits, so everything passes there.
func hasSecureMode(mode fs.FileMode) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	return mode.Perm() == SecureMode
}

// String implements fmt.Stringer without leaking session IDs.
func (f *File) String() string {
	n := 0
	for _, list := range f.sessions {
		n += len(list)
	}
	return fmt.Sprintf("session file %s (%d sessions, %d servers)", f.path, n, len(f.sessions))
}
