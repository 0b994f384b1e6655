package interfaces

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CredentialPair is a developer certificate and private key, as raw bytes.
// No format validation is performed on either half.
type CredentialPair struct {
	Cert []byte
	Key  []byte
}

// DeviceCredentials are issued by the scheduler for a registered node.
type DeviceCredentials struct {
	// Cert is the PEM-encoded device certificate signed by the scheduler.
	Cert []byte

	// Key is the PEM-encoded private key matching Cert.
	Key []byte

	// Rune authorizes RPC calls against the node.
	Rune string
}

// Network identifies the Bitcoin network a hosted node runs on.
type Network string

const (
	NetworkBitcoin Network = "bitcoin"
	NetworkTestnet Network = "testnet"
	NetworkSignet  Network = "signet"
	NetworkRegtest Network = "regtest"
)

// ParseNetwork validates a network name.
func ParseNetwork(name string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(name))); n {
	case NetworkBitcoin, NetworkTestnet, NetworkSignet, NetworkRegtest:
		return n, nil
	default:
		return "", fmt.Errorf("unsupported network: %q", name)
	}
}

func (n Network) String() string {
	return string(n)
}

// NodeID is the 33-byte compressed secp256k1 public key of a node.
type NodeID []byte

func (id NodeID) String() string {
	return hex.EncodeToString(id)
}

// Registration is the scheduler's answer to a register or recover call.
type Registration struct {
	NodeID NodeID
	Creds  DeviceCredentials
}

// AmountAny is the offer amount meaning the payer chooses the amount.
const AmountAny = "any"

// OfferRequest mirrors the node's offer RPC parameters.
type OfferRequest struct {
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Issuer      *string `json:"issuer,omitempty"`
	Label       *string `json:"label,omitempty"`

	// AbsoluteExpiry is a unix timestamp in seconds, nil for offers that never expire.
	AbsoluteExpiry *uint64 `json:"absolute_expiry,omitempty"`

	Recurrence          *string `json:"recurrence,omitempty"`
	RecurrenceBase      *string `json:"recurrence_base,omitempty"`
	RecurrencePaywindow *string `json:"recurrence_paywindow,omitempty"`
	RecurrenceLimit     *uint32 `json:"recurrence_limit,omitempty"`
	QuantityMax         *uint64 `json:"quantity_max,omitempty"`
	SingleUse           *bool   `json:"single_use,omitempty"`
}

// OfferResponse is returned by the node after the offer has been created.
type OfferResponse struct {
	OfferID   string `json:"offer_id"`
	Active    bool   `json:"active"`
	SingleUse bool   `json:"single_use"`
	Bolt12    string `json:"bolt12"`
	Used      bool   `json:"used"`
	Created   bool   `json:"created"`
	Label     string `json:"label,omitempty"`
}
