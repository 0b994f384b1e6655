/*
Package api holds the HTTP surface of the offer backend.

It is organized into three subpackages:

 1. handlers - request processing for offers, health and usernames
 2. servers - routing, middleware and server lifecycle
 3. clients - a Go client for the endpoints below

# Endpoints

	GET  /                          service description
	GET  /api/create-offer?expiry=N create a BOLT12 offer, optionally expiring in N seconds
	GET  /health                    credential and configuration status, always 200
	POST /create-username           publish a BIP-353 name for an offer
	GET  /resolve/{username}        look up the offer behind a name

Every response body is a Response envelope:

	{"success": true, "message": "...", "data": {...}}

Failures carry success=false and a message, without data.
*/
package api
