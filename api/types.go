package api

import "github.com/shopstr/greenlight-backend/username"

// Version is reported by the welcome endpoint.
const Version = "1.0.0"

// Response is the envelope around every API response body.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data,omitempty"`
}

// Empty is the data type of responses that never carry data.
type Empty struct{}

type OfferData struct {
	Offer string `json:"offer"`
}

type HealthConfig struct {
	CertificatesLoaded bool   `json:"certificates_loaded"`
	Network            string `json:"network"`
	SeedMode           string `json:"seed_mode"`

	// UsernameDomain is empty when username publishing is disabled.
	UsernameDomain string `json:"username_domain,omitempty"`
	DNSSimulated   bool   `json:"dns_simulated"`
}

type HealthData struct {
	Status    string       `json:"status"`
	Timestamp int64        `json:"timestamp"`
	Config    HealthConfig `json:"config"`
}

type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

type WelcomeData struct {
	Version   string     `json:"version"`
	Endpoints []Endpoint `json:"endpoints"`
}

// CreateUsernameRequest is the body of POST /create-username.
type CreateUsernameRequest struct {
	Username    string `json:"username"`
	Bolt12Offer string `json:"bolt12Offer"`
}

// UsernameData is returned by POST /create-username.
type UsernameData = username.Registration

type ResolveData struct {
	Username string `json:"username"`
	Offer    string `json:"offer"`
}
