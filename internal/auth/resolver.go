// Package auth resolves Zabbix credentials from the environment,
// configuration, on-disk session and auth files, and an interactive
// prompt, in a fixed priority order.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/config"
	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/session"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

// Environment variables consulted by the resolver.
const (
	EnvAPIToken = "ZABBIX_API_TOKEN"
	EnvUsername = "ZABBIX_USERNAME"
	EnvPassword = "ZABBIX_PASSWORD"
)

// CredentialsType is the kind of credential a source produced.
type CredentialsType string

const (
	TypeToken    CredentialsType = "token"
	TypeSession  CredentialsType = "session"
	TypePassword CredentialsType = "password"
)

// CredentialsSource is where a credential came from.
type CredentialsSource string

const (
	SourceEnv    CredentialsSource = "env"
	SourceConfig CredentialsSource = "config"
	SourceFile   CredentialsSource = "file"
	SourcePrompt CredentialsSource = "prompt"
)

// Credentials is one candidate credential and its provenance.
type Credentials struct {
	Type   CredentialsType
	Source CredentialsSource

	Username  string
	Password  string
	Token     string
	SessionID string
}

// loginOptions converts the credential into client login options.
func (c Credentials) loginOptions() zabbix.LoginOptions {
	return zabbix.LoginOptions{
		Username:  c.Username,
		Password:  c.Password,
		Token:     c.Token,
		SessionID: c.SessionID,
	}
}

// Environ abstracts os.Getenv for tests.
type Environ func(key string) string

// Resolver picks the first working credential from the ordered sources
// and leaves the client logged in with it.
type Resolver struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *zabbix.Client
	getenv   Environ
	prompter Prompter
}

// NewResolver creates a resolver for one client.
func NewResolver(cfg *config.Config, log *zap.Logger, client *zabbix.Client, getenv Environ, prompter Prompter) *Resolver {
	return &Resolver{
		cfg:      cfg,
		log:      log,
		client:   client,
		getenv:   getenv,
		prompter: prompter,
	}
}

// Resolve probes each credential source in priority order and returns
// the first one that authenticates. Authentication failures move on to
// the next source; any other failure (network, parsing) aborts. On
// success with a username/password credential, the obtained session ID
// is persisted to the session file when configured.
func (r *Resolver) Resolve(ctx context.Context) (*Credentials, error) {
	sources := []func() (*Credentials, error){
		r.tokenFromEnv,
		r.tokenFromConfig,
		r.sessionFromFile,
		r.passwordFromEnv,
		r.passwordFromConfig,
		r.passwordFromAuthFile,
		r.tokenFromAuthTokenFile,
		r.passwordFromPrompt,
	}

	for _, source := range sources {
		cred, err := source()
		if err != nil {
			return nil, err
		}
		if cred == nil {
			continue
		}

		r.log.Debug("trying credential",
			zap.String("type", string(cred.Type)),
			zap.String("source", string(cred.Source)))

		if err := r.client.Login(ctx, cred.loginOptions()); err != nil {
			if errs.IsAuthError(err) {
				r.log.Debug("credential rejected, trying next source",
					zap.String("type", string(cred.Type)),
					zap.String("source", string(cred.Source)),
					zap.Error(err))
				continue
			}
			return nil, err
		}

		r.persistSession(cred)
		return cred, nil
	}

	return nil, errs.New(errs.ErrLogin, "no authentication method succeeded")
}

// username returns the username used for session lookups: the
// environment wins over the configuration.
func (r *Resolver) username() string {
	if u := r.getenv(EnvUsername); u != "" {
		return u
	}
	return r.cfg.API.Username
}

func (r *Resolver) tokenFromEnv() (*Credentials, error) {
	token := r.getenv(EnvAPIToken)
	if token == "" {
		return nil, nil
	}
	return &Credentials{Type: TypeToken, Source: SourceEnv, Token: token}, nil
}

func (r *Resolver) tokenFromConfig() (*Credentials, error) {
	if r.cfg.API.AuthToken == "" {
		return nil, nil
	}
	return &Credentials{Type: TypeToken, Source: SourceConfig, Token: r.cfg.API.AuthToken}, nil
}

func (r *Resolver) sessionFromFile() (*Credentials, error) {
	if !r.cfg.App.UseSessionFile {
		return nil, nil
	}
	username := r.username()
	if username == "" {
		return nil, nil
	}

	file, err := session.Load(r.cfg.App.SessionFile, r.cfg.App.AllowInsecureAuthFile)
	if err != nil {
		if errors.Is(err, errs.ErrSessionFileNotFound) {
			return nil, nil
		}
		// Permission problems and parse failures are real errors the
		// user must fix, not a reason to silently fall through.
		return nil, err
	}

	s, ok := file.Get(r.client.BaseURL(), username)
	if !ok {
		return nil, nil
	}
	return &Credentials{
		Type:      TypeSession,
		Source:    SourceFile,
		Username:  username,
		SessionID: s.SessionID,
	}, nil
}

func (r *Resolver) passwordFromEnv() (*Credentials, error) {
	username := r.getenv(EnvUsername)
	password := r.getenv(EnvPassword)
	if username == "" || password == "" {
		return nil, nil
	}
	return &Credentials{Type: TypePassword, Source: SourceEnv, Username: username, Password: password}, nil
}

func (r *Resolver) passwordFromConfig() (*Credentials, error) {
	if r.cfg.API.Username == "" || r.cfg.API.Password == "" {
		return nil, nil
	}
	return &Credentials{
		Type:     TypePassword,
		Source:   SourceConfig,
		Username: r.cfg.API.Username,
		Password: r.cfg.API.Password,
	}, nil
}

func (r *Resolver) passwordFromAuthFile() (*Credentials, error) {
	if r.cfg.App.AuthFile == "" {
		return nil, nil
	}
	username, password, err := session.ReadAuthFile(r.cfg.App.AuthFile, r.cfg.App.AllowInsecureAuthFile)
	if err != nil {
		if errors.Is(err, errs.ErrSessionFileNotFound) {
			return nil, nil
		}
		r.log.Warn("skipping unreadable auth file",
			zap.String("path", r.cfg.App.AuthFile), zap.Error(err))
		return nil, nil
	}
	if username == "" || password == "" {
		return nil, nil
	}
	return &Credentials{Type: TypePassword, Source: SourceFile, Username: username, Password: password}, nil
}

func (r *Resolver) tokenFromAuthTokenFile() (*Credentials, error) {
	if r.cfg.App.AuthTokenFile == "" {
		return nil, nil
	}
	username, token, err := session.ReadAuthFile(r.cfg.App.AuthTokenFile, r.cfg.App.AllowInsecureAuthFile)
	if err != nil {
		if errors.Is(err, errs.ErrSessionFileNotFound) {
			return nil, nil
		}
		r.log.Warn("skipping unreadable auth token file",
			zap.String("path", r.cfg.App.AuthTokenFile), zap.Error(err))
		return nil, nil
	}
	if token == "" {
		return nil, nil
	}
	// A stored token for a different username than the configured one
	// is stale; never use it.
	if configured := r.username(); configured != "" && username != "" && username != configured {
		r.log.Warn("ignoring auth token file: stored username does not match configured username",
			zap.String("stored", username), zap.String("configured", configured))
		return nil, nil
	}
	return &Credentials{Type: TypeSession, Source: SourceFile, Username: username, SessionID: token}, nil
}

func (r *Resolver) passwordFromPrompt() (*Credentials, error) {
	if r.prompter == nil || !r.prompter.IsTerminal() {
		return nil, nil
	}
	username, err := r.prompter.Username(r.username())
	if err != nil {
		return nil, errs.Wrap(errs.ErrLogin, err, "failed to read username")
	}
	password, err := r.prompter.Password()
	if err != nil {
		return nil, errs.Wrap(errs.ErrLogin, err, "failed to read password")
	}
	return &Credentials{Type: TypePassword, Source: SourcePrompt, Username: username, Password: password}, nil
}

// persistSession stores the session ID obtained from a username/password
// login. Persistence failures are logged, never fatal.
func (r *Resolver) persistSession(cred *Credentials) {
	if cred.Type != TypePassword || !r.cfg.App.UseSessionFile {
		return
	}
	if r.cfg.App.SessionFile == "" {
		return
	}

	file, err := session.Load(r.cfg.App.SessionFile, r.cfg.App.AllowInsecureAuthFile)
	if err != nil {
		if !errors.Is(err, errs.ErrSessionFileNotFound) {
			r.log.Warn("failed to load session file for update", zap.Error(err))
			return
		}
		file = session.NewFile(r.cfg.App.SessionFile)
	}

	file.Set(r.client.BaseURL(), cred.Username, r.client.AuthToken())
	if err := file.Save(r.cfg.App.AllowInsecureAuthFile); err != nil {
		r.log.Warn("failed to persist session", zap.Error(err))
		return
	}
	r.log.Debug("persisted session",
		zap.String("url", r.client.BaseURL()), zap.String("username", cred.Username))
}
