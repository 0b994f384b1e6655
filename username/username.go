// Package username publishes BIP-353 payment instructions for human readable
// names. A name user@domain resolves through a TXT record at
// user.user._bitcoin-payment.domain holding "bitcoin:?lno=<offer>".
package username

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	// RecordTTL is the TTL of published payment records in seconds.
	RecordTTL = 3600

	DefaultCloudflareAPI = "https://api.cloudflare.com/client/v4"
	DefaultResolver      = "1.1.1.1:53"

	recordSuffix = "user._bitcoin-payment"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidOffer    = errors.New("invalid BOLT12 offer")
	ErrNotConfigured   = errors.New("DNS provider is not configured")
	ErrNotFound        = errors.New("username not found")
)

// Config for the username service.
type Config struct {
	Domain string

	CloudflareAPIToken string
	CloudflareZoneID   string
	CloudflareAPIURL   string

	// Development simulates record creation when Cloudflare is not configured.
	Development bool

	// Resolver is the host:port of the DNS server used by Resolve.
	Resolver string

	Timeout    time.Duration
	HTTPClient *http.Client
}

// DNSRecord describes a published TXT record.
type DNSRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	TTL       int    `json:"ttl"`
	CreatedOn string `json:"created_on,omitempty"`
}

// Registration is the result of publishing a username.
type Registration struct {
	Username       string    `json:"username"`
	BitcoinAddress string    `json:"bitcoinAddress"`
	DNSRecord      DNSRecord `json:"dnsRecord"`
}

// Service creates and resolves usernames under a single domain.
type Service struct {
	cfg        Config
	log        *slog.Logger
	cloudflare recordCreator
	dns        *dns.Client
	now        func() time.Time
}

func NewService(cfg Config, log *slog.Logger) (*Service, error) {
	cfg.Domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(cfg.Domain)), ".")
	if _, ok := dns.IsDomainName(cfg.Domain); !ok || dns.CountLabel(cfg.Domain) < 2 {
		return nil, fmt.Errorf("invalid username domain %q", cfg.Domain)
	}
	if cfg.CloudflareAPIURL == "" {
		cfg.CloudflareAPIURL = DefaultCloudflareAPI
	}
	if cfg.Resolver == "" {
		cfg.Resolver = DefaultResolver
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	s := &Service{
		cfg: cfg,
		log: log,
		dns: &dns.Client{Net: "udp", Timeout: cfg.Timeout},
		now: time.Now,
	}
	if cfg.CloudflareAPIToken != "" && cfg.CloudflareZoneID != "" {
		cf, err := newCloudflareClient(cfg.CloudflareAPIURL, cfg.CloudflareAPIToken, cfg.CloudflareZoneID, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
		s.cloudflare = cf
	} else if !cfg.Development {
		log.Warn("Cloudflare credentials missing, username creation disabled")
	}
	return s, nil
}

func (s *Service) Domain() string {
	return s.cfg.Domain
}

// Simulated reports whether records are simulated instead of published.
func (s *Service) Simulated() bool {
	return s.cloudflare == nil && s.cfg.Development
}

// Configured reports whether usernames can be created at all.
func (s *Service) Configured() bool {
	return s.cloudflare != nil || s.cfg.Development
}

// RecordName returns the BIP-353 record name for a user under domain.
func RecordName(user, domain string) string {
	return user + "." + recordSuffix + "." + domain
}

// RecordContent returns the TXT content, quoted, pointing at a BOLT12 offer.
func RecordContent(offer string) string {
	return `"bitcoin:?lno=` + offer + `"`
}

// NormalizeUsername lowercases a username and checks it is a single DNS label.
func NormalizeUsername(raw string) (string, error) {
	user := strings.ToLower(strings.TrimSpace(raw))
	if user == "" || strings.Contains(user, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, raw)
	}
	if _, ok := dns.IsDomainName(user); !ok || len(user) > 63 {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, raw)
	}
	for _, r := range user {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", fmt.Errorf("%w: %q", ErrInvalidUsername, raw)
		}
	}
	return user, nil
}

func validateOffer(offer string) error {
	if !strings.HasPrefix(strings.ToLower(offer), "lno1") || strings.ContainsAny(offer, " \t\r\n\"?&") {
		return ErrInvalidOffer
	}
	return nil
}

// Create publishes the offer under username.
func (s *Service) Create(ctx context.Context, username, offer string) (*Registration, error) {
	user, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	offer = strings.TrimSpace(offer)
	if err := validateOffer(offer); err != nil {
		return nil, err
	}

	name := RecordName(user, s.cfg.Domain)
	content := RecordContent(offer)

	var record *DNSRecord
	switch {
	case s.cloudflare != nil:
		record, err = s.cloudflare.createTXT(ctx, name, content, RecordTTL)
		if err != nil {
			s.log.Error("Error creating DNS record", "name", name, "err", err)
			return nil, err
		}
	case s.cfg.Development:
		s.log.Info("Using simulated DNS record creation (development mode)", "name", name)
		now := s.now()
		record = &DNSRecord{
			ID:        fmt.Sprintf("simulated-record-%d", now.UnixMilli()),
			Name:      name,
			Type:      "TXT",
			Content:   content,
			TTL:       RecordTTL,
			CreatedOn: now.UTC().Format(time.RFC3339Nano),
		}
	default:
		return nil, ErrNotConfigured
	}

	s.log.Info("Username created", "username", user, "recordID", record.ID)
	return &Registration{
		Username:       user + "@" + s.cfg.Domain,
		BitcoinAddress: name,
		DNSRecord:      *record,
	}, nil
}

// Resolve looks up the offer published for username.
func (s *Service) Resolve(ctx context.Context, username string) (string, error) {
	user, err := NormalizeUsername(username)
	if err != nil {
		return "", err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(RecordName(user, s.cfg.Domain)), dns.TypeTXT)
	msg.RecursionDesired = true

	resp, _, err := s.dns.ExchangeContext(ctx, msg, s.cfg.Resolver)
	if err != nil {
		return "", fmt.Errorf("dns query failed: %w", err)
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return "", ErrNotFound
	default:
		return "", fmt.Errorf("dns query failed: %s", dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		if offer, ok := parsePaymentURI(strings.Join(txt.Txt, "")); ok {
			return offer, nil
		}
	}
	return "", ErrNotFound
}

// parsePaymentURI extracts the lno parameter from a bitcoin: URI.
func parsePaymentURI(content string) (string, bool) {
	content = strings.Trim(content, `"`)
	if len(content) < len("bitcoin:") || !strings.EqualFold(content[:len("bitcoin:")], "bitcoin:") {
		return "", false
	}
	_, query, found := strings.Cut(content[len("bitcoin:"):], "?")
	if !found {
		return "", false
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return "", false
	}
	for k, v := range params {
		if strings.EqualFold(k, "lno") && len(v) > 0 && v[0] != "" {
			return v[0], true
		}
	}
	return "", false
}
