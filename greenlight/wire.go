package greenlight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 4096

type challengeRequest struct {
	NodeID string `json:"node_id"`
	Scope  string `json:"scope"`
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

type registrationRequest struct {
	NodeID     string `json:"node_id"`
	Network    string `json:"network,omitempty"`
	Challenge  string `json:"challenge"`
	Signature  string `json:"signature"`
	CSR        string `json:"csr"`
	InviteCode string `json:"invite_code,omitempty"`
}

type registrationResponse struct {
	DeviceCert string `json:"device_cert"`
	DeviceKey  string `json:"device_key,omitempty"`
	Rune       string `json:"rune"`
}

type whoamiResponse struct {
	NodeID string `json:"node_id"`
}

type scheduleRequest struct {
	NodeID string `json:"node_id"`
}

type scheduleResponse struct {
	NodeID  string `json:"node_id"`
	NodeURI string `json:"node_uri"`
}

// StatusError is returned when a remote endpoint answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned error %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// doJSON sends in as a JSON body (GET when in is nil) and decodes the response into out.
func doJSON(ctx context.Context, client *http.Client, method, url string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: req.URL.Path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(errBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", req.URL.Path, err)
	}
	return nil
}
