package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopstr/greenlight-backend/api"
)

// OfferClient talks to the offer API over HTTP.
type OfferClient struct {
	// ServerAddr is the base URL of the API server
	ServerAddr string

	HTTPClient *http.Client
}

func NewOfferClient(serverAddr string, timeout time.Duration) *OfferClient {
	return &OfferClient{
		ServerAddr: strings.TrimRight(serverAddr, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// CreateOffer requests a new BOLT12 offer. A nil expiry creates an offer that never expires.
func (c *OfferClient) CreateOffer(ctx context.Context, expirySeconds *uint32) (string, error) {
	path := "/api/create-offer"
	if expirySeconds != nil {
		path += "?expiry=" + strconv.FormatUint(uint64(*expirySeconds), 10)
	}

	data, err := call[api.OfferData](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return data.Offer, nil
}

func (c *OfferClient) Health(ctx context.Context) (*api.HealthData, error) {
	return call[api.HealthData](ctx, c, http.MethodGet, "/health", nil)
}

func (c *OfferClient) CreateUsername(ctx context.Context, user, offer string) (*api.UsernameData, error) {
	return call[api.UsernameData](ctx, c, http.MethodPost, "/create-username",
		api.CreateUsernameRequest{Username: user, Bolt12Offer: offer})
}

func (c *OfferClient) ResolveUsername(ctx context.Context, user string) (*api.ResolveData, error) {
	return call[api.ResolveData](ctx, c, http.MethodGet, "/resolve/"+url.PathEscape(user), nil)
}

func call[T any](ctx context.Context, c *OfferClient, method, path string, in any) (*T, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ServerAddr+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read %s response: %w", path, err)
	}

	var parsed api.Response[T]
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%s returned non-JSON response %d: %s", path, resp.StatusCode, string(raw))
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success {
		return nil, fmt.Errorf("%s returned error %d: %s", path, resp.StatusCode, parsed.Message)
	}
	if parsed.Data == nil {
		return nil, fmt.Errorf("%s returned no data", path)
	}
	return parsed.Data, nil
}
