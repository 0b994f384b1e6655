package username

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudflare/cloudflare-go"
)

// recordCreator publishes TXT records for a zone.
type recordCreator interface {
	createTXT(ctx context.Context, name, content string, ttl int) (*DNSRecord, error)
}

type cloudflareClient struct {
	api  *cloudflare.API
	zone *cloudflare.ResourceContainer
}

func newCloudflareClient(baseURL, token, zoneID string, httpClient *http.Client) (*cloudflareClient, error) {
	api, err := cloudflare.NewWithAPIToken(token,
		cloudflare.BaseURL(strings.TrimRight(baseURL, "/")),
		cloudflare.HTTPClient(httpClient),
		cloudflare.UsingRetryPolicy(0, 0, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
	}
	return &cloudflareClient{api: api, zone: cloudflare.ZoneIdentifier(zoneID)}, nil
}

func (c *cloudflareClient) createTXT(ctx context.Context, name, content string, ttl int) (*DNSRecord, error) {
	rec, err := c.api.CreateDNSRecord(ctx, c.zone, cloudflare.CreateDNSRecordParams{
		Type:    "TXT",
		Name:    name,
		Content: content,
		TTL:     ttl,
	})
	if err != nil {
		var apiErr interface{ ErrorMessages() []string }
		if errors.As(err, &apiErr) {
			if msgs := apiErr.ErrorMessages(); len(msgs) > 0 && msgs[0] != "" {
				return nil, errors.New(msgs[0])
			}
		}
		return nil, fmt.Errorf("failed to create DNS record: %w", err)
	}
	if rec.ID == "" {
		return nil, errors.New("no record in Cloudflare response")
	}

	return &DNSRecord{
		ID:        rec.ID,
		Name:      rec.Name,
		Type:      rec.Type,
		Content:   rec.Content,
		TTL:       rec.TTL,
		CreatedOn: rec.CreatedOn.UTC().Format(time.RFC3339Nano),
	}, nil
}
