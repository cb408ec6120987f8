package session

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

func TestGetSet(t *testing.T) {
	f := NewFile("")

	if _, ok := f.Get("https://zbx.example.com", "admin"); ok {
		t.Error("Get on empty store should miss")
	}

	f.Set("https://zbx.example.com", "admin", "abc123")
	s, ok := f.Get("https://zbx.example.com", "admin")
	if !ok || s.SessionID != "abc123" {
		t.Errorf("Get = %+v, %v; want abc123", s, ok)
	}

	// Replacing an existing session must not grow the list.
	f.Set("https://zbx.example.com", "admin", "xyz789")
	s, _ = f.Get("https://zbx.example.com", "admin")
	if s.SessionID != "xyz789" {
		t.Errorf("SessionID = %q, want xyz789", s.SessionID)
	}
	if n := len(f.sessions["https://zbx.example.com"]); n != 1 {
		t.Errorf("session list length = %d, want 1", n)
	}

	// A second user on the same URL coexists.
	f.Set("https://zbx.example.com", "guest", "guest-id")
	if n := len(f.sessions["https://zbx.example.com"]); n != 2 {
		t.Errorf("session list length = %d, want 2", n)
	}

	// A miss for an unknown URL.
	if _, ok := f.Get("https://other.example.com", "admin"); ok {
		t.Error("Get for unknown URL should miss")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	f := NewFile(path)
	f.Set("https://zbx1.example.com", "admin", "s1")
	f.Set("https://zbx1.example.com", "guest", "s2")
	f.Set("https://zbx2.example.com", "admin", "s3")

	if err := f.Save(false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, tt := range []struct{ url, user, want string }{
		{"https://zbx1.example.com", "admin", "s1"},
		{"https://zbx1.example.com", "guest", "s2"},
		{"https://zbx2.example.com", "admin", "s3"},
	} {
		s, ok := loaded.Get(tt.url, tt.user)
		if !ok || s.SessionID != tt.want {
			t.Errorf("Get(%s, %s) = %+v, %v; want %s", tt.url, tt.user, s, ok, tt.want)
		}
	}
}

func TestSaveEnforcesSecureMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no POSIX permissions on windows")
	}
	path := filepath.Join(t.TempDir(), "sessions.json")

	f := NewFile(path)
	f.Set("https://zbx.example.com", "admin", "secret")
	if err := f.Save(false); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != SecureMode {
		t.Errorf("mode = %o, want %o", info.Mode().Perm(), SecureMode)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	f := NewFile("")
	err := f.Save(false)
	if !errors.Is(err, errs.ErrSessionFile) {
		t.Errorf("expected ErrSessionFile, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), false)
	if !errors.Is(err, errs.ErrSessionFileNotFound) {
		t.Errorf("expected ErrSessionFileNotFound, got %v", err)
	}
	// Specific kind still matches the session file root kind.
	if !errors.Is(err, errs.ErrSessionFile) {
		t.Errorf("expected ErrSessionFile to match, got %v", err)
	}
}

func TestLoadInsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no POSIX permissions on windows")
	}
	path := filepath.Join(t.TempDir(), "sessions.json")
	content := `{"https://zbx.example.com": [{"username": "admin", "session_id": "abc123"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path, false)
	if !errors.Is(err, errs.ErrSessionFilePermissions) {
		t.Fatalf("expected ErrSessionFilePermissions, got %v", err)
	}

	f, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load with allowInsecure: %v", err)
	}
	s, ok := f.Get("https://zbx.example.com", "admin")
	if !ok || s.SessionID != "abc123" {
		t.Errorf("Get = %+v, %v; want abc123", s, ok)
	}
}

func TestSaveRepairsInsecureMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no POSIX permissions on windows")
	}
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(path)
	f.Set("https://zbx.example.com", "admin", "s")
	if err := f.Save(false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != SecureMode {
		t.Errorf("mode = %o, want %o", info.Mode().Perm(), SecureMode)
	}
}

func TestReadAuthFile(t *testing.T) {
	writeFile := func(t *testing.T, content string, mode os.FileMode) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "auth")
		if err := os.WriteFile(path, []byte(content), mode); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, "admin::token-value\n", 0o600)
		user, secret, err := ReadAuthFile(path, false)
		if err != nil {
			t.Fatalf("ReadAuthFile: %v", err)
		}
		if user != "admin" || secret != "token-value" {
			t.Errorf("got (%q, %q)", user, secret)
		}
	})

	t.Run("leading blank lines", func(t *testing.T) {
		path := writeFile(t, "\n\nadmin::tok\n", 0o600)
		user, secret, err := ReadAuthFile(path, false)
		if err != nil {
			t.Fatalf("ReadAuthFile: %v", err)
		}
		if user != "admin" || secret != "tok" {
			t.Errorf("got (%q, %q)", user, secret)
		}
	})

	t.Run("missing separator", func(t *testing.T) {
		path := writeFile(t, "justatoken\n", 0o600)
		if _, _, err := ReadAuthFile(path, false); err == nil {
			t.Error("expected error for malformed file")
		}
	})

	t.Run("empty", func(t *testing.T) {
		path := writeFile(t, "", 0o600)
		if _, _, err := ReadAuthFile(path, false); err == nil {
			t.Error("expected error for empty file")
		}
	})

	t.Run("insecure mode", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("no POSIX permissions on windows")
		}
		path := writeFile(t, "admin::tok\n", 0o644)
		if _, _, err := ReadAuthFile(path, false); !errors.Is(err, errs.ErrSessionFilePermissions) {
			t.Errorf("expected ErrSessionFilePermissions, got %v", err)
		}
		if _, _, err := ReadAuthFile(path, true); err != nil {
			t.Errorf("allowInsecure read failed: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := ReadAuthFile(filepath.Join(t.TempDir(), "absent"), false)
		if !errors.Is(err, errs.ErrSessionFileNotFound) {
			t.Errorf("expected ErrSessionFileNotFound, got %v", err)
		}
	})
}

func TestWriteAuthTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth_token")
	if err := WriteAuthTokenFile(path, "admin", "tok123"); err != nil {
		t.Fatalf("WriteAuthTokenFile: %v", err)
	}
	user, secret, err := ReadAuthFile(path, false)
	if err != nil {
		t.Fatalf("ReadAuthFile: %v", err)
	}
	if user != "admin" || secret != "tok123" {
		t.Errorf("got (%q, %q)", user, secret)
	}
}
