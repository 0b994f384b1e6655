// Package offers drives the scheduler handshake that ends in a BOLT12 offer.
//
// Each CreateOffer call walks a fixed sequence of states:
//
//	Unauthenticated -> Registered -> Authenticated -> NodeReady -> OfferSubmitted
//
// A failure at any step aborts the call with an error wrapping the sentinel
// for that step. Nothing is retried and no state survives the call.
package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/shopstr/greenlight-backend/metrics"
	"github.com/shopstr/greenlight-backend/seed"
)

// DefaultDescription is attached to every offer unless configured otherwise.
const DefaultDescription = "Shopstr username registration"

// State is the last handshake step completed by a CreateOffer call.
type State int

const (
	StateUnauthenticated State = iota
	StateRegistered
	StateAuthenticated
	StateNodeReady
	StateOfferSubmitted
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRegistered:
		return "registered"
	case StateAuthenticated:
		return "authenticated"
	case StateNodeReady:
		return "node_ready"
	case StateOfferSubmitted:
		return "offer_submitted"
	default:
		return "unknown"
	}
}

// CredentialSource resolves developer credentials.
type CredentialSource interface {
	Load(ctx context.Context) (interfaces.CredentialPair, error)
}

// Config is fixed for the lifetime of an Orchestrator.
type Config struct {
	Network     interfaces.Network
	Description string

	// InviteCode is passed to registration when set.
	InviteCode string
}

// Orchestrator creates offers by registering a hosted node for each request.
type Orchestrator struct {
	cfg     Config
	creds   CredentialSource
	client  interfaces.NodeHostingClient
	seeds   seed.Provider
	metrics *metrics.Recorder
	log     *slog.Logger

	now func() time.Time
}

// NewOrchestrator wires an orchestrator. recorder may be nil.
func NewOrchestrator(cfg Config, creds CredentialSource, client interfaces.NodeHostingClient, seeds seed.Provider, recorder *metrics.Recorder, log *slog.Logger) *Orchestrator {
	if cfg.Network == "" {
		cfg.Network = interfaces.NetworkBitcoin
	}
	if cfg.Description == "" {
		cfg.Description = DefaultDescription
	}
	return &Orchestrator{
		cfg:     cfg,
		creds:   creds,
		client:  client,
		seeds:   seeds,
		metrics: recorder,
		log:     log,
		now:     time.Now,
	}
}

func (o *Orchestrator) Network() interfaces.Network {
	return o.cfg.Network
}

func (o *Orchestrator) SeedMode() seed.Mode {
	return o.seeds.Mode()
}

// CreateOffer runs the full handshake and returns the BOLT12 offer string.
// When expirySeconds is set the offer expires that many seconds from now.
func (o *Orchestrator) CreateOffer(ctx context.Context, expirySeconds *uint32) (string, error) {
	start := o.now()
	log := o.log.With("requestID", uuid.NewString(), "network", o.cfg.Network)

	state, offer, err := o.run(ctx, log, expirySeconds)
	o.metrics.ObserveOffer(state.String(), err, time.Since(start))
	if err != nil {
		log.Error("Offer creation failed", "state", state.String(), "timestamp", o.now().Unix(), "err", err)
		return "", err
	}

	log.Info("BOLT 12 offer created successfully", "offerLength", len(offer))
	return offer, nil
}

func (o *Orchestrator) run(ctx context.Context, log *slog.Logger, expirySeconds *uint32) (State, string, error) {
	state := StateUnauthenticated

	creds, err := o.creds.Load(ctx)
	if err != nil {
		return state, "", err
	}

	scheduler, err := o.client.NewScheduler(ctx, o.cfg.Network, creds)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrSchedulerUnreachable, err)
	}

	seedBytes, err := o.seeds.Seed(ctx)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrSignerConstructionFailed, err)
	}

	signer, err := o.client.NewSigner(seedBytes, o.cfg.Network, creds)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrSignerConstructionFailed, err)
	}

	reg, err := o.register(ctx, log, scheduler, signer)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrRegistrationFailed, err)
	}
	state = StateRegistered
	log.Debug("Node registered", "nodeID", reg.NodeID.String())

	authed, err := scheduler.Authenticate(ctx, reg.Creds)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrAuthenticationFailed, err)
	}
	state = StateAuthenticated

	node, err := authed.Node(ctx)
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrNodeHandleUnavailable, err)
	}
	state = StateNodeReady

	resp, err := node.Offer(ctx, o.offerRequest(expirySeconds))
	if err != nil {
		return state, "", fmt.Errorf("%w: %w", interfaces.ErrOfferSubmissionFailed, err)
	}
	if resp == nil || resp.Bolt12 == "" {
		return state, "", fmt.Errorf("%w: node returned an empty offer", interfaces.ErrOfferSubmissionFailed)
	}

	return StateOfferSubmitted, resp.Bolt12, nil
}

// register falls back to recovery when the seed is stable and the node exists.
func (o *Orchestrator) register(ctx context.Context, log *slog.Logger, scheduler interfaces.Scheduler, signer interfaces.Signer) (*interfaces.Registration, error) {
	reg, err := scheduler.Register(ctx, signer, o.cfg.InviteCode)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, interfaces.ErrAlreadyRegistered) || !o.seeds.Stable() {
		return nil, err
	}

	log.Info("Node already registered, recovering", "nodeID", signer.NodeID().String())
	return scheduler.Recover(ctx, signer)
}

func (o *Orchestrator) offerRequest(expirySeconds *uint32) *interfaces.OfferRequest {
	empty := ""
	singleUse := false
	quantityMax := uint64(0)

	req := &interfaces.OfferRequest{
		Amount:      interfaces.AmountAny,
		Description: o.cfg.Description,
		Issuer:      &empty,
		Label:       &empty,
		QuantityMax: &quantityMax,
		SingleUse:   &singleUse,
	}

	if expirySeconds != nil {
		expiry := uint64(o.now().Unix()) + uint64(*expirySeconds)
		req.AbsoluteExpiry = &expiry
	}
	return req
}
