// Package cryptoutils contains the certificate helpers shared by the node-hosting
// client and the tooling: TLS client configuration from raw PEM credentials,
// device CSR generation, and throwaway self-signed identities for development.
package cryptoutils
