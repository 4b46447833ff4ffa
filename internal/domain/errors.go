package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors of the order core. Duplicate and invalid-transition errors
// are expected under at-least-once webhook delivery and must never be treated
// as fatal by ingestion endpoints.
var (
	ErrUnknownOrder      = errors.New("unknown order")
	ErrDuplicateEvent    = errors.New("duplicate confirmation event")
	ErrAmountMismatch    = errors.New("payment amount below quoted price")
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrOrderInFlight     = errors.New("order for this domain is already in flight")
	ErrDomainUnavailable = errors.New("domain is not available for registration")
)

// ExternalServiceError transient failure of an external collaborator
// (registrar, DNS provider, payment gateway). Retryable with backoff.
type ExternalServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ExternalServiceRejected definitive rejection by an external collaborator.
// Not retryable: the order transitions to failed with the reason preserved.
type ExternalServiceRejected struct {
	Service string
	Op      string
	Reason  string
}

func (e *ExternalServiceRejected) Error() string {
	return fmt.Sprintf("%s rejected %s: %s", e.Service, e.Op, e.Reason)
}

// IsRetryable reports whether the error is a transient external failure
func IsRetryable(err error) bool {
	var transient *ExternalServiceError
	return errors.As(err, &transient)
}

// BusinessError business-logic error already logged inside a use case
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
