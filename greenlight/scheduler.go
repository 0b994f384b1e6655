package greenlight

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopstr/greenlight-backend/cryptoutils"
	"github.com/shopstr/greenlight-backend/interfaces"
)

const (
	scopeRegister = "register"
	scopeRecover  = "recover"
)

// Scheduler is a scheduler session opened with developer credentials.
type Scheduler struct {
	client  *Client
	baseURL string
	network interfaces.Network
	http    *http.Client
	log     *slog.Logger
}

// Register creates a node for the signer. The scheduler answering 409 maps to
// interfaces.ErrAlreadyRegistered.
func (s *Scheduler) Register(ctx context.Context, signer interfaces.Signer, inviteCode string) (*interfaces.Registration, error) {
	return s.enroll(ctx, signer, scopeRegister, inviteCode)
}

// Recover issues fresh device credentials for a node that is already registered.
func (s *Scheduler) Recover(ctx context.Context, signer interfaces.Signer) (*interfaces.Registration, error) {
	return s.enroll(ctx, signer, scopeRecover, "")
}

func (s *Scheduler) enroll(ctx context.Context, signer interfaces.Signer, scope, inviteCode string) (*interfaces.Registration, error) {
	if signer.Network() != s.network {
		return nil, fmt.Errorf("signer is bound to %s, scheduler to %s", signer.Network(), s.network)
	}

	nodeID := signer.NodeID()

	var ch challengeResponse
	err := doJSON(ctx, s.http, http.MethodPost, s.baseURL+"/v1/challenge", nil,
		challengeRequest{NodeID: nodeID.String(), Scope: scope}, &ch)
	if err != nil {
		return nil, fmt.Errorf("challenge request failed: %w", err)
	}

	challenge, err := hex.DecodeString(ch.Challenge)
	if err != nil || len(challenge) == 0 {
		return nil, fmt.Errorf("scheduler returned malformed challenge %q", ch.Challenge)
	}

	signature, err := signer.Sign(challenge)
	if err != nil {
		return nil, fmt.Errorf("could not sign challenge: %w", err)
	}

	deviceKey, csr, err := cryptoutils.CreateCSRWithRandomKey("/users/" + nodeID.String())
	if err != nil {
		return nil, fmt.Errorf("could not create device CSR: %w", err)
	}

	req := registrationRequest{
		NodeID:    nodeID.String(),
		Challenge: ch.Challenge,
		Signature: hex.EncodeToString(signature),
		CSR:       string(csr),
	}
	if scope == scopeRegister {
		req.Network = s.network.String()
		req.InviteCode = inviteCode
	}

	var resp registrationResponse
	err = doJSON(ctx, s.http, http.MethodPost, s.baseURL+"/v1/"+scope, nil, req, &resp)
	if err != nil {
		var statusErr *StatusError
		if scope == scopeRegister && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrAlreadyRegistered, nodeID)
		}
		return nil, err
	}

	if resp.DeviceCert == "" {
		return nil, errors.New("scheduler returned no device certificate")
	}

	// The scheduler may hand back the key it signed for; otherwise the CSR key applies.
	if resp.DeviceKey != "" {
		deviceKey = []byte(resp.DeviceKey)
	}

	s.log.Info("node enrolled", "scope", scope, "nodeID", nodeID.String())

	return &interfaces.Registration{
		NodeID: bytes.Clone(nodeID),
		Creds: interfaces.DeviceCredentials{
			Cert: []byte(resp.DeviceCert),
			Key:  deviceKey,
			Rune: resp.Rune,
		},
	}, nil
}

// Authenticate switches to the device identity and confirms the scheduler accepts it.
func (s *Scheduler) Authenticate(ctx context.Context, creds interfaces.DeviceCredentials) (interfaces.AuthenticatedScheduler, error) {
	tlsConfig, err := cryptoutils.ClientTLSConfig(creds.Cert, creds.Key, s.client.cfg.CACert)
	if err != nil {
		return nil, err
	}
	httpClient := s.client.newHTTPClient(tlsConfig)

	var who whoamiResponse
	if err := doJSON(ctx, httpClient, http.MethodGet, s.baseURL+"/v1/whoami", nil, nil, &who); err != nil {
		return nil, err
	}

	nodeID, err := hex.DecodeString(who.NodeID)
	if err != nil || len(nodeID) == 0 {
		return nil, fmt.Errorf("scheduler returned malformed node id %q", who.NodeID)
	}

	return &AuthenticatedScheduler{
		baseURL: s.baseURL,
		nodeID:  nodeID,
		rune:    creds.Rune,
		http:    httpClient,
		log:     s.log.With("nodeID", who.NodeID),
	}, nil
}

// AuthenticatedScheduler acts on behalf of a single node.
type AuthenticatedScheduler struct {
	baseURL string
	nodeID  interfaces.NodeID
	rune    string
	http    *http.Client
	log     *slog.Logger
}

func (a *AuthenticatedScheduler) NodeID() interfaces.NodeID {
	return a.nodeID
}

// Node asks the scheduler to place the node and returns a client for it.
func (a *AuthenticatedScheduler) Node(ctx context.Context) (interfaces.Node, error) {
	var resp scheduleResponse
	err := doJSON(ctx, a.http, http.MethodPost, a.baseURL+"/v1/schedule", nil,
		scheduleRequest{NodeID: a.nodeID.String()}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.NodeURI == "" {
		return nil, errors.New("scheduler returned no node uri")
	}

	a.log.Debug("node scheduled", "nodeURI", resp.NodeURI)
	return NewNodeClient(resp.NodeURI, a.rune, a.http), nil
}
