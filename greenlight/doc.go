/*
Package greenlight binds the node-hosting service used to create hosted
Lightning nodes.

The upstream Greenlight scheduler speaks gRPC. This package does not; it talks
to an intermediary gateway that exposes the scheduler operations as JSON over
HTTPS and forwards them upstream. The gateway address has no default and must
be configured (Config.SchedulerURL, --scheduler-url).

# Scheduler

The gateway is reached over HTTPS with mutual TLS. A session opened with
developer credentials may register new nodes or recover existing ones:

	POST /v1/challenge  {"node_id", "scope"}                      -> {"challenge"}
	POST /v1/register   {"node_id", "network", "challenge",
	                     "signature", "csr", "invite_code"}        -> {"device_cert", "device_key", "rune"}
	POST /v1/recover    {"node_id", "challenge", "signature", "csr"} -> same as register

A 409 from register means the node id is already known.

Authenticating replaces the developer identity with the device identity
issued at registration and confirms it with:

	GET  /v1/whoami                                              -> {"node_id"}
	POST /v1/schedule   {"node_id"}                               -> {"node_id", "node_uri"}

# Signer

The node key is the secp256k1 private key given by the 32-byte seed; the node
id is its compressed public key. Challenges are signed as SHA-256 digests in
64-byte compact form.

# Node

The scheduled node exposes the Core Lightning REST interface. Offers are
created with POST /v1/offer and the device rune in the Rune header.
*/
package greenlight
