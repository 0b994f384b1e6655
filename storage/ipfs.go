package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/shopstr/greenlight-backend/interfaces"
)

// ErrReadOnlyBackend is returned by Store on backends that cannot be written.
var ErrReadOnlyBackend = errors.New("storage backend is read-only")

// IPFSBackend reads named objects from an IPFS directory identified by its root CID.
// Published directories are immutable, so the backend is read-only.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	root        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates an IPFS backend connected to the node API at host:port.
func NewIPFSBackend(host, port, root string, timeout time.Duration, log *slog.Logger) (*IPFSBackend, error) {
	if root == "" {
		return nil, fmt.Errorf("ipfs backend requires a root CID")
	}

	apiURL := fmt.Sprintf("%s:%s", host, port)
	sh := shell.NewShell(apiURL)
	sh.SetTimeout(timeout)

	return &IPFSBackend{
		shell:       sh,
		host:        host,
		port:        port,
		root:        strings.Trim(root, "/"),
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s/?root=%s", apiURL, root),
	}, nil
}

// Fetch reads <root>/<name> from IPFS.
func (b *IPFSBackend) Fetch(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	path := fmt.Sprintf("/ipfs/%s/%s", b.root, name)

	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	reader, err := b.shell.Cat(path)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") {
			b.log.Debug("Content not found in IPFS", slog.String("path", path))
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched content from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store always fails: published IPFS directories cannot be modified in place.
func (b *IPFSBackend) Store(ctx context.Context, name string, data []byte) error {
	return ErrReadOnlyBackend
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}
