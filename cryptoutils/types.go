package cryptoutils

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// TLSCSR represents a TLS Certificate Signing Request in PEM format.
type TLSCSR []byte

// NewTLSCSR creates a new CSR object from PEM-encoded data with validation.
func NewTLSCSR(data []byte) (TLSCSR, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE REQUEST" {
		return TLSCSR{}, errors.New("invalid CSR: not in PEM format or not a certificate request")
	}

	if _, err := x509.ParseCertificateRequest(block.Bytes); err != nil {
		return TLSCSR{}, fmt.Errorf("invalid CSR structure: %w", err)
	}

	return TLSCSR(data), nil
}

// GetX509CSR returns the parsed X.509 certificate request.
func (csr TLSCSR) GetX509CSR() (*x509.CertificateRequest, error) {
	block, _ := pem.Decode(csr)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}
	return x509.ParseCertificateRequest(block.Bytes)
}
