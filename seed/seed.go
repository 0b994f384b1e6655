// Package seed decides how long a node signing seed lives.
//
// A node's identity is derived from its 32-byte seed, so the seed lifecycle
// decides whether repeated offer requests talk to the same hosted node:
//
//   - request: a fresh random seed per call; every call registers a new node.
//   - process: one random seed per process lifetime.
//   - derived: HKDF-SHA256 of a master secret, stable across restarts.
//   - persisted: a random seed created once and kept in a storage backend.
package seed

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopstr/greenlight-backend/interfaces"
	"golang.org/x/crypto/hkdf"
)

// Size is the length of a signing seed in bytes.
const Size = 32

// ObjectName is the storage object that holds a persisted seed.
const ObjectName = "node-seed"

// Mode names a seed lifecycle.
type Mode string

const (
	ModeRequest   Mode = "request"
	ModeProcess   Mode = "process"
	ModeDerived   Mode = "derived"
	ModePersisted Mode = "persisted"
)

// ParseMode validates a seed mode name.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case ModeRequest, ModeProcess, ModeDerived, ModePersisted:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported seed mode: %q", name)
	}
}

// Provider hands out signing seeds.
type Provider interface {
	Seed(ctx context.Context) ([]byte, error)

	// Stable reports whether consecutive calls return the same seed.
	Stable() bool

	Mode() Mode
}

// Config selects and parameterizes a Provider.
type Config struct {
	Mode Mode

	// MasterSecret is the hex-encoded secret for ModeDerived, at least 32 bytes.
	MasterSecret string

	// Network is mixed into derived seeds so each network gets its own node.
	Network interfaces.Network

	// Store keeps the seed for ModePersisted.
	Store interfaces.StorageBackend
}

// NewProvider builds the provider for cfg.Mode.
func NewProvider(cfg Config, log *slog.Logger) (Provider, error) {
	switch cfg.Mode {
	case ModeRequest, "":
		return &RandomProvider{}, nil
	case ModeProcess:
		s, err := randomSeed()
		if err != nil {
			return nil, err
		}
		return &StaticProvider{seed: s, mode: ModeProcess}, nil
	case ModeDerived:
		return NewDerivedProvider(cfg.MasterSecret, cfg.Network)
	case ModePersisted:
		if cfg.Store == nil {
			return nil, errors.New("persisted seed mode requires a seed store")
		}
		return &PersistedProvider{store: cfg.Store, log: log}, nil
	default:
		return nil, fmt.Errorf("unsupported seed mode: %q", cfg.Mode)
	}
}

func randomSeed() ([]byte, error) {
	s := make([]byte, Size)
	if _, err := io.ReadFull(rand.Reader, s); err != nil {
		return nil, fmt.Errorf("failed to generate seed: %w", err)
	}
	return s, nil
}

// RandomProvider returns a new random seed on every call.
type RandomProvider struct{}

func (p *RandomProvider) Seed(ctx context.Context) ([]byte, error) { return randomSeed() }
func (p *RandomProvider) Stable() bool                              { return false }
func (p *RandomProvider) Mode() Mode                                { return ModeRequest }

// StaticProvider returns a fixed seed.
type StaticProvider struct {
	seed []byte
	mode Mode
}

func (p *StaticProvider) Seed(ctx context.Context) ([]byte, error) {
	return append([]byte(nil), p.seed...), nil
}
func (p *StaticProvider) Stable() bool { return true }
func (p *StaticProvider) Mode() Mode   { return p.mode }

// NewDerivedProvider derives the seed from a hex master secret with HKDF-SHA256.
func NewDerivedProvider(masterSecretHex string, network interfaces.Network) (*StaticProvider, error) {
	secret, err := hex.DecodeString(strings.TrimPrefix(masterSecretHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid seed master secret: %w", err)
	}
	if len(secret) < Size {
		return nil, fmt.Errorf("seed master secret must be at least %d bytes", Size)
	}

	kdf := hkdf.New(sha256.New, secret, nil, []byte("greenlight-node-seed/"+network.String()))
	s := make([]byte, Size)
	if _, err := io.ReadFull(kdf, s); err != nil {
		return nil, fmt.Errorf("failed to derive seed: %w", err)
	}
	return &StaticProvider{seed: s, mode: ModeDerived}, nil
}

// PersistedProvider loads the seed from a storage backend, creating it on first use.
type PersistedProvider struct {
	store interfaces.StorageBackend
	log   *slog.Logger

	mu   sync.Mutex
	seed []byte
}

func (p *PersistedProvider) Seed(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seed != nil {
		return append([]byte(nil), p.seed...), nil
	}

	raw, err := p.store.Fetch(ctx, ObjectName)
	switch {
	case err == nil:
		s, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil || len(s) != Size {
			return nil, fmt.Errorf("corrupt seed in %s", p.store.Name())
		}
		p.seed = s
	case errors.Is(err, interfaces.ErrContentNotFound):
		s, err := randomSeed()
		if err != nil {
			return nil, err
		}
		if err := p.store.Store(ctx, ObjectName, []byte(hex.EncodeToString(s))); err != nil {
			return nil, fmt.Errorf("failed to persist seed: %w", err)
		}
		p.log.Info("Generated and persisted new node seed", "store", p.store.Name())
		p.seed = s
	default:
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}

	return append([]byte(nil), p.seed...), nil
}

func (p *PersistedProvider) Stable() bool { return true }
func (p *PersistedProvider) Mode() Mode   { return ModePersisted }
