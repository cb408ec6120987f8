package session

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
)

// authFileSep separates username and secret in legacy auth files.
const authFileSep = "::"

// ReadAuthFile reads a legacy auth or auth-token file. The payload is the
// first non-blank line in the form "username::secret". The same 0600
// permission rule as the session file applies.
func ReadAuthFile(path string, allowInsecure bool) (username, secret string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", errs.New(errs.ErrSessionFileNotFound, "auth file %s does not exist", path)
		}
		return "", "", errs.Wrap(errs.ErrSessionFile, err, "failed to stat auth file %s", path)
	}
	if err := checkSecure(info.Mode(), path, allowInsecure); err != nil {
		return "", "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrSessionFile, err, "failed to read auth file %s", path)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		username, secret, ok := strings.Cut(line, authFileSep)
		if !ok {
			return "", "", errs.New(errs.ErrSessionFile,
				"auth file %s is malformed: expected \"username%ssecret\"", path, authFileSep)
		}
		return username, secret, nil
	}
	return "", "", errs.New(errs.ErrSessionFile, "auth file %s is empty", path)
}

// WriteAuthTokenFile writes a "username::token" pair to path with secure
// permissions, repairing the mode of an existing file first.
func WriteAuthTokenFile(path, username, token string) error {
	if path == "" {
		return errs.New(errs.ErrSessionFile, "cannot save auth token file: no path set")
	}
	if info, err := os.Stat(path); err == nil && !hasSecureMode(info.Mode()) {
		if err := os.Chmod(path, SecureMode); err != nil {
			return errs.Wrap(errs.ErrSessionFilePermissions, err,
				"failed to set secure permissions on %s", path)
		}
	}
	contents := username + authFileSep + token
	if err := os.WriteFile(path, []byte(contents), SecureMode); err != nil {
		return errs.Wrap(errs.ErrSessionFile, err, "failed to write auth token file %s", path)
	}
	return nil
}
