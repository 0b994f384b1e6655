package greenlight

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopstr/greenlight-backend/interfaces"
)

// Signer holds a node's secp256k1 key.
type Signer struct {
	key     *ecdsa.PrivateKey
	nodeID  interfaces.NodeID
	network interfaces.Network
}

// NewSigner derives the node key from a 32-byte seed.
func NewSigner(seed []byte, network interfaces.Network) (*Signer, error) {
	if len(seed) != 32 {
		return nil, fmt.Errorf("seed must be 32 bytes, got %d", len(seed))
	}

	key, err := crypto.ToECDSA(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid node key: %w", err)
	}

	return &Signer{
		key:     key,
		nodeID:  crypto.CompressPubkey(&key.PublicKey),
		network: network,
	}, nil
}

func (s *Signer) NodeID() interfaces.NodeID {
	return s.nodeID
}

func (s *Signer) Network() interfaces.Network {
	return s.network
}

// Sign signs the SHA-256 digest of msg and returns the 64-byte [R || S] signature.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig, err := crypto.Sign(digest[:], s.key)
	if err != nil {
		return nil, err
	}
	return sig[:64], nil
}
