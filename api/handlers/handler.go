package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/shopstr/greenlight-backend/api"
	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/shopstr/greenlight-backend/seed"
	"github.com/shopstr/greenlight-backend/username"
)

// maxBodySize is the maximum allowed request body size (64KB).
const maxBodySize = 64 * 1024

// OfferCreator runs the offer handshake.
type OfferCreator interface {
	CreateOffer(ctx context.Context, expirySeconds *uint32) (string, error)
	Network() interfaces.Network
	SeedMode() seed.Mode
}

// CredentialChecker reports whether developer credentials can be loaded.
type CredentialChecker interface {
	Available(ctx context.Context) bool
}

// UsernameService publishes and resolves BIP-353 names.
type UsernameService interface {
	Create(ctx context.Context, user, offer string) (*username.Registration, error)
	Resolve(ctx context.Context, user string) (string, error)
	Domain() string
	Simulated() bool
}

// Handler serves the offer API.
type Handler struct {
	offers    OfferCreator
	creds     CredentialChecker
	usernames UsernameService
	log       *slog.Logger
	now       func() time.Time
}

// NewHandler creates a handler. usernames may be nil, which disables the
// username endpoints.
func NewHandler(offers OfferCreator, creds CredentialChecker, usernames UsernameService, log *slog.Logger) *Handler {
	return &Handler{
		offers:    offers,
		creds:     creds,
		usernames: usernames,
		log:       log,
		now:       time.Now,
	}
}

func writeJSON[T any](w http.ResponseWriter, status int, resp api.Response[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.Response[api.Empty]{Success: false, Message: msg})
}

// errorMessage renders err the way callers see it, first letter upper-cased.
func errorMessage(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// HandleCreateOffer creates a BOLT12 offer.
//
// URL format: GET /api/create-offer?expiry=<seconds>
func (h *Handler) HandleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var expiry *uint32
	if raw := r.URL.Query().Get("expiry"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expiry: expected a non-negative number of seconds")
			return
		}
		e := uint32(v)
		expiry = &e
	}

	offer, err := h.offers.CreateOffer(r.Context(), expiry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, api.Response[api.OfferData]{
		Success: true,
		Message: "BOLT 12 offer created successfully",
		Data:    &api.OfferData{Offer: offer},
	})
}

// HandleHealth reports whether the service is fully configured. It always
// answers 200; missing credentials show up as certificates_loaded=false.
//
// URL format: GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := h.creds.Available(r.Context())

	cfg := api.HealthConfig{
		CertificatesLoaded: loaded,
		Network:            h.offers.Network().String(),
		SeedMode:           string(h.offers.SeedMode()),
	}
	if h.usernames != nil {
		cfg.UsernameDomain = h.usernames.Domain()
		cfg.DNSSimulated = h.usernames.Simulated()
	}

	status := "ok"
	message := "Service is running"
	if !loaded {
		status = "degraded"
		message = "Service is running without developer credentials"
	}

	writeJSON(w, http.StatusOK, api.Response[api.HealthData]{
		Success: true,
		Message: message,
		Data: &api.HealthData{
			Status:    status,
			Timestamp: h.now().Unix(),
			Config:    cfg,
		},
	})
}

// HandleWelcome describes the service.
//
// URL format: GET /
func (h *Handler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	endpoints := []api.Endpoint{
		{Path: "/api/create-offer", Method: http.MethodGet, Description: "Create a BOLT12 offer, optionally expiring after ?expiry seconds"},
		{Path: "/health", Method: http.MethodGet, Description: "Check if the API is running and configured"},
	}
	if h.usernames != nil {
		endpoints = append(endpoints,
			api.Endpoint{Path: "/create-username", Method: http.MethodPost, Description: "Create a new username with a BOLT12 offer"},
			api.Endpoint{Path: "/resolve/{username}", Method: http.MethodGet, Description: "Resolve a username to its BOLT12 offer"},
		)
	}

	writeJSON(w, http.StatusOK, api.Response[api.WelcomeData]{
		Success: true,
		Message: "Greenlight offer API",
		Data:    &api.WelcomeData{Version: api.Version, Endpoints: endpoints},
	})
}

// HandleCreateUsername publishes a BIP-353 record for an offer.
//
// URL format: POST /create-username
// Body: {"username": "...", "bolt12Offer": "lno1..."}
func (h *Handler) HandleCreateUsername(w http.ResponseWriter, r *http.Request) {
	if h.usernames == nil {
		writeError(w, http.StatusNotFound, "Username service is not enabled")
		return
	}

	var req api.CreateUsernameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Bolt12Offer) == "" {
		writeError(w, http.StatusBadRequest, "Username and BOLT12 offer are required")
		return
	}

	reg, err := h.usernames.Create(r.Context(), req.Username, req.Bolt12Offer)
	switch {
	case err == nil:
	case errors.Is(err, username.ErrInvalidUsername), errors.Is(err, username.ErrInvalidOffer):
		writeError(w, http.StatusBadRequest, errorMessage(err))
		return
	case errors.Is(err, username.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, errorMessage(err))
		return
	default:
		h.log.Error("Error in create-username route", "err", err)
		writeError(w, http.StatusInternalServerError, errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, api.Response[api.UsernameData]{
		Success: true,
		Message: "Username created successfully",
		Data:    reg,
	})
}

// HandleResolveUsername returns the offer published for a username.
//
// URL format: GET /resolve/{username}
func (h *Handler) HandleResolveUsername(w http.ResponseWriter, r *http.Request) {
	if h.usernames == nil {
		writeError(w, http.StatusNotFound, "Username service is not enabled")
		return
	}

	user := chi.URLParam(r, "username")
	offer, err := h.usernames.Resolve(r.Context(), user)
	switch {
	case err == nil:
	case errors.Is(err, username.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, errorMessage(err))
		return
	case errors.Is(err, username.ErrNotFound):
		writeError(w, http.StatusNotFound, errorMessage(err))
		return
	default:
		h.log.Error("Failed to resolve username", "username", user, "err", err)
		writeError(w, http.StatusBadGateway, errorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, api.Response[api.ResolveData]{
		Success: true,
		Message: "Username resolved",
		Data:    &api.ResolveData{Username: strings.ToLower(user) + "@" + h.usernames.Domain(), Offer: offer},
	})
}
