package interfaces

import "context"

// NodeHostingClient is the entry point into the node-hosting service.
type NodeHostingClient interface {
	// NewScheduler opens a scheduler session authorized by developer credentials.
	NewScheduler(ctx context.Context, network Network, creds CredentialPair) (Scheduler, error)

	// NewSigner builds a signer bound to a 32-byte seed.
	NewSigner(seed []byte, network Network, creds CredentialPair) (Signer, error)
}

// Scheduler is an unauthenticated scheduler session.
type Scheduler interface {
	// Register creates a new node identity for the signer's node id.
	// Returns ErrAlreadyRegistered if the scheduler already knows the node.
	Register(ctx context.Context, signer Signer, inviteCode string) (*Registration, error)

	// Recover re-issues device credentials for an existing node.
	Recover(ctx context.Context, signer Signer) (*Registration, error)

	// Authenticate upgrades the session using device credentials.
	Authenticate(ctx context.Context, creds DeviceCredentials) (AuthenticatedScheduler, error)
}

// AuthenticatedScheduler is a scheduler session acting on behalf of one node.
type AuthenticatedScheduler interface {
	// Node schedules the node and returns a client connected to it.
	Node(ctx context.Context) (Node, error)
}

// Signer holds the node's key material.
type Signer interface {
	NodeID() NodeID
	Network() Network

	// Sign returns a signature over the SHA-256 digest of msg.
	Sign(msg []byte) ([]byte, error)
}

// Node is an RPC handle to a running hosted node.
type Node interface {
	Offer(ctx context.Context, req *OfferRequest) (*OfferResponse, error)
}
