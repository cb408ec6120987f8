// Package errs defines the error kinds shared by all components.
//
// Kinds are sentinel errors arranged in a shallow hierarchy. Callers match
// on kinds with errors.Is, never on message strings. An error tagged with a
// specific kind also matches every ancestor kind, so errors.Is(err, ErrAPI)
// is true for a token-expired error.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. These carry no state; they exist to be matched against.
var (
	ErrCLI    = errors.New("zabbix-cli error")
	ErrConfig = errors.New("configuration error")

	ErrAPI             = errors.New("zabbix API error")
	ErrRequest         = errors.New("zabbix API request error")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrSessionExpired  = errors.New("session expired")
	ErrTokenExpired    = errors.New("API token expired")
	ErrResponseParsing = errors.New("unable to parse API response")
	ErrLogin           = errors.New("login failed")
	ErrLogout          = errors.New("logout failed")
	ErrAPICall         = errors.New("API call failed")
	ErrNotFound        = errors.New("not found")

	ErrSessionFile            = errors.New("session file error")
	ErrSessionFileNotFound    = errors.New("session file not found")
	ErrSessionFilePermissions = errors.New("session file has insecure permissions")
)

// parents maps each kind to its parent in the hierarchy. ErrCLI is the root.
var parents = map[error]error{
	ErrConfig:                 ErrCLI,
	ErrAPI:                    ErrCLI,
	ErrRequest:                ErrAPI,
	ErrNotAuthorized:          ErrRequest,
	ErrSessionExpired:         ErrRequest,
	ErrTokenExpired:           ErrRequest,
	ErrResponseParsing:        ErrAPI,
	ErrLogin:                  ErrAPI,
	ErrLogout:                 ErrAPI,
	ErrAPICall:                ErrAPI,
	ErrNotFound:               ErrAPI,
	ErrSessionFile:            ErrCLI,
	ErrSessionFileNotFound:    ErrSessionFile,
	ErrSessionFilePermissions: ErrSessionFile,
}

// KindIs reports whether kind is target or a descendant of target.
func KindIs(kind, target error) bool {
	for k := kind; k != nil; k = parents[k] {
		if k == target {
			return true
		}
	}
	return false
}

// Error is an error tagged with a kind, optionally wrapping a cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Is matches against the error's kind and all of its ancestors.
func (e *Error) Is(target error) bool {
	return KindIs(e.Kind, target)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind and a contextual message. The cause remains
// inspectable through errors.Unwrap and errors.As.
func Wrap(kind error, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsAuthError reports whether err is one of the kinds the credential
// resolver treats as "try the next source".
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrLogin)
}
