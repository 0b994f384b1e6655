// Package handlers implements the request processing behind the offer API.
// Handlers translate HTTP requests into calls on the offer orchestrator,
// the credential loader and the username service and wrap every result in
// an api.Response envelope.
package handlers
