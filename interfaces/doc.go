// Package interfaces defines the core types and collaborator contracts of the
// offer backend, separating interface definitions from implementations.
//
// # Credentials
//
// CredentialPair holds the developer certificate and key that authorize the
// creation of new hosted nodes. DeviceCredentials are handed out by the
// scheduler after a node has been registered and are used for every later
// call on behalf of that node.
//
// # Node hosting
//
// NodeHostingClient, Scheduler, AuthenticatedScheduler, Signer and Node model
// the remote node-hosting service. The greenlight package provides the
// concrete implementation; tests substitute mocks.
//
// # Storage
//
// StorageBackend is a named-object store used for credential fallbacks and
// persisted signing seeds. See the storage package for file, S3, Vault and
// IPFS backends.
//
// # Errors
//
// Every step of the offer handshake has a sentinel error. Implementations wrap
// the underlying cause so callers can match the kind with errors.Is while
// still reporting the cause to the user.
package interfaces
