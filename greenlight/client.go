package greenlight

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopstr/greenlight-backend/cryptoutils"
	"github.com/shopstr/greenlight-backend/interfaces"
)

const DefaultTimeout = 30 * time.Second

// ErrNoSchedulerURL is returned when no gateway address is configured.
var ErrNoSchedulerURL = errors.New("scheduler gateway url not configured")

// Config parameterizes a Client.
type Config struct {
	// SchedulerURL is the base URL of the scheduler gateway. There is no
	// default: the gateway is a deployment of its own, not the upstream
	// gRPC scheduler.
	SchedulerURL string

	// CACert optionally pins the CA that scheduler and node certificates chain to.
	CACert []byte

	// Timeout bounds each outbound request.
	Timeout time.Duration
}

// Client implements interfaces.NodeHostingClient over the scheduler gateway.
type Client struct {
	cfg Config
	log *slog.Logger

	// newHTTPClient builds the transport for a given client identity.
	newHTTPClient func(*tls.Config) *http.Client
}

// NewClient returns a client for the configured scheduler gateway.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{cfg: cfg, log: log}
	c.newHTTPClient = func(tlsConfig *tls.Config) *http.Client {
		return &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		}
	}
	return c
}

// NewScheduler opens a scheduler session identified by the developer certificate.
func (c *Client) NewScheduler(ctx context.Context, network interfaces.Network, creds interfaces.CredentialPair) (interfaces.Scheduler, error) {
	if _, err := interfaces.ParseNetwork(string(network)); err != nil {
		return nil, err
	}

	if c.cfg.SchedulerURL == "" {
		return nil, ErrNoSchedulerURL
	}
	base, err := url.Parse(c.cfg.SchedulerURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid scheduler url %q", c.cfg.SchedulerURL)
	}

	tlsConfig, err := cryptoutils.ClientTLSConfig(creds.Cert, creds.Key, c.cfg.CACert)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		client:  c,
		baseURL: strings.TrimRight(base.String(), "/"),
		network: network,
		http:    c.newHTTPClient(tlsConfig),
		log:     c.log.With("network", network),
	}, nil
}

// NewSigner builds a signer over the seed. The developer credentials are not
// needed to sign and are only accepted to satisfy the interface.
func (c *Client) NewSigner(seed []byte, network interfaces.Network, _ interfaces.CredentialPair) (interfaces.Signer, error) {
	return NewSigner(seed, network)
}
