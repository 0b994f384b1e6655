// Package storage provides named-object stores with pluggable backends.
//
// The offer backend keeps two kinds of small objects outside the process:
// developer credentials that are not supplied through the environment, and
// the persisted node signing seed. Both are addressed by a plain name such as
// "client.crt" or "node-seed".
//
//   - File system storage for local development and single-host deployments
//   - S3-compatible storage for cloud deployments
//   - Vault KV v2 storage for secrets
//   - IPFS storage for immutable, published credential bundles (read-only)
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/greenlight/
//   - s3://bucket-name/prefix/?region=us-west-2
//   - vault://vault.example.com:8200/secret/greenlight
//   - ipfs://127.0.0.1:5001/?root=bafy...
//
// # Redundancy
//
// MultiStorageBackend combines several backends: reads return the first hit,
// writes go to every available backend.
package storage
