package interfaces

import "errors"

var (
	// ErrCredentialMissing is returned when the certificate or key cannot be
	// read from any configured source.
	ErrCredentialMissing = errors.New("developer credentials missing")

	ErrMissingCertificate = &kindError{parent: ErrCredentialMissing, msg: "developer certificate not found"}
	ErrMissingKey         = &kindError{parent: ErrCredentialMissing, msg: "developer key not found"}

	ErrSchedulerUnreachable     = errors.New("failed to create scheduler")
	ErrSignerConstructionFailed = errors.New("failed to create signer")
	ErrRegistrationFailed       = errors.New("failed to register node")
	ErrAuthenticationFailed     = errors.New("failed to authenticate")
	ErrNodeHandleUnavailable    = errors.New("failed to get node")
	ErrOfferSubmissionFailed    = errors.New("failed to create offer")

	// ErrAlreadyRegistered is reported by the scheduler when the node id is known.
	ErrAlreadyRegistered = errors.New("node already registered")
)

// kindError is a sentinel that also matches its parent kind.
type kindError struct {
	parent error
	msg    string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.parent }
