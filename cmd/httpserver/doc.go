// Package main (cmd/httpserver) serves the BOLT12 offer API.
//
// Each GET /api/create-offer loads the developer credentials, registers a
// hosted node with the scheduler, authenticates as that node and asks it for
// an offer. GET /health reports whether the credentials can be loaded.
// Optionally the server publishes BIP-353 usernames for offers through
// Cloudflare DNS.
//
// Developer credentials come from GL_CERT_CONTENT / GL_KEY_CONTENT (Base64 or
// raw PEM), then from the files at GL_CERT_PATH / GL_KEY_PATH (client.crt and
// client-key.pem by default), then from the optional --credential-store.
// They are re-read on every request, including the environment file.
//
// Example usage:
//
//	greenlight-backend --listen-addr=0.0.0.0:8081 \
//	    --network=bitcoin \
//	    --seed-mode=persisted --seed-store=file:///var/lib/greenlight \
//	    --username-domain=example.com --development
package main
