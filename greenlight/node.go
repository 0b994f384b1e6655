package greenlight

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopstr/greenlight-backend/interfaces"
)

// NodeClient talks to a hosted node's REST interface.
type NodeClient struct {
	baseURL string
	rune    string
	http    *http.Client
}

// NewNodeClient returns a client for the node at baseURL authorized by authRune.
func NewNodeClient(baseURL, authRune string, httpClient *http.Client) *NodeClient {
	return &NodeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		rune:    authRune,
		http:    httpClient,
	}
}

// Offer creates a BOLT12 offer on the node.
func (n *NodeClient) Offer(ctx context.Context, req *interfaces.OfferRequest) (*interfaces.OfferResponse, error) {
	header := http.Header{}
	if n.rune != "" {
		header.Set("Rune", n.rune)
	}

	var resp interfaces.OfferResponse
	if err := doJSON(ctx, n.http, http.MethodPost, n.baseURL+"/v1/offer", header, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
