// Package credentials resolves the developer certificate and key used to
// open scheduler sessions.
//
// Each half is resolved independently, first success wins:
//
//  1. the *_CONTENT environment variable, Base64-decoded when it decodes and
//     used verbatim otherwise;
//  2. the file named by the *_PATH environment variable, or the default path;
//  3. the object named after that path's base name in the configured
//     credential store, if any.
//
// Resolution happens on every Load; nothing is cached. The environment file
// is re-read each time so rotated credentials are picked up without a restart.
package credentials

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/shopstr/greenlight-backend/metrics"
)

const (
	EnvCertContent = "GL_CERT_CONTENT"
	EnvKeyContent  = "GL_KEY_CONTENT"
	EnvCertPath    = "GL_CERT_PATH"
	EnvKeyPath     = "GL_KEY_PATH"

	DefaultCertPath = "client.crt"
	DefaultKeyPath  = "client-key.pem"
)

// DefaultEnvFiles are the environment-definition files tried in order.
var DefaultEnvFiles = []string{".env", "../.env"}

// Config controls where the Loader looks for credentials.
type Config struct {
	// EnvFiles are candidate environment files; the first one that parses is used.
	// Process environment variables take precedence over file values.
	EnvFiles []string

	// Store is an optional fallback for credentials absent from env and disk.
	Store interfaces.StorageBackend

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	// Metrics counts resolutions. Optional.
	Metrics *metrics.Recorder
}

// Loader resolves developer credentials.
type Loader struct {
	cfg Config
	log *slog.Logger
}

// NewLoader creates a loader, filling unset hooks with the os defaults.
func NewLoader(cfg Config, log *slog.Logger) *Loader {
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	return &Loader{cfg: cfg, log: log}
}

type source struct {
	contentVar  string
	pathVar     string
	defaultPath string
	missing     error
}

var (
	certSource = source{EnvCertContent, EnvCertPath, DefaultCertPath, interfaces.ErrMissingCertificate}
	keySource  = source{EnvKeyContent, EnvKeyPath, DefaultKeyPath, interfaces.ErrMissingKey}
)

// Load resolves the certificate and key. Errors match interfaces.ErrCredentialMissing.
func (l *Loader) Load(ctx context.Context) (interfaces.CredentialPair, error) {
	pair, err := l.load(ctx)
	l.cfg.Metrics.ObserveCredentialLoad(err)
	return pair, err
}

func (l *Loader) load(ctx context.Context) (interfaces.CredentialPair, error) {
	lookup := l.environment()

	cert, err := l.resolve(ctx, lookup, certSource)
	if err != nil {
		return interfaces.CredentialPair{}, err
	}

	key, err := l.resolve(ctx, lookup, keySource)
	if err != nil {
		return interfaces.CredentialPair{}, err
	}

	return interfaces.CredentialPair{Cert: cert, Key: key}, nil
}

func (l *Loader) resolve(ctx context.Context, lookup func(string) (string, bool), src source) ([]byte, error) {
	if content, ok := lookup(src.contentVar); ok && content != "" {
		l.log.Debug("Using credential from environment", "var", src.contentVar)
		return decodeContent(content), nil
	}

	path := src.defaultPath
	if p, ok := lookup(src.pathVar); ok && p != "" {
		path = p
	}

	data, err := l.cfg.ReadFile(path)
	if err == nil {
		l.log.Debug("Using credential from file", "path", path)
		return data, nil
	}
	l.log.Debug("Credential file not readable", "path", path, "err", err)

	if l.cfg.Store != nil {
		name := filepath.Base(path)
		data, err := l.cfg.Store.Fetch(ctx, name)
		if err == nil {
			l.log.Debug("Using credential from store", "store", l.cfg.Store.Name(), "object", name)
			return data, nil
		}
		if !errors.Is(err, interfaces.ErrContentNotFound) {
			l.log.Warn("Credential store lookup failed", "store", l.cfg.Store.Name(), "object", name, "err", err)
		}
	}

	return nil, fmt.Errorf("%w at %s", src.missing, path)
}

// decodeContent returns the Base64 decoding of content, or content itself
// when it is not valid Base64.
func decodeContent(content string) []byte {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil || len(decoded) == 0 {
		return []byte(content)
	}
	return decoded
}

// environment returns a lookup that consults the process environment first
// and the first parseable environment file second. A process variable set to
// the empty string does not mask the file.
func (l *Loader) environment() func(string) (string, bool) {
	fileVars := l.readEnvFile()
	return func(key string) (string, bool) {
		if v, ok := l.cfg.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
}

func (l *Loader) readEnvFile() map[string]string {
	for _, name := range l.cfg.EnvFiles {
		vars, err := godotenv.Read(name)
		if err == nil {
			return vars
		}
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn("Ignoring unreadable environment file", "file", name, "err", err)
		}
	}
	return nil
}

// Available reports whether Load would currently succeed.
func (l *Loader) Available(ctx context.Context) bool {
	_, err := l.Load(ctx)
	return err == nil
}
