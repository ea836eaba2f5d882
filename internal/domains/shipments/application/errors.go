package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
	"github.com/Apurer/go-gin-shipment-api/internal/shared/formdata"
)

// Kind is the stable error category surfaced to adapters.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindLedgerUnavailable Kind = "LEDGER_UNAVAILABLE"
	KindLedgerRejected    Kind = "LEDGER_REJECTED"
	KindLedgerTransport   Kind = "LEDGER_TRANSPORT"
	KindStorageFailure    Kind = "STORAGE_FAILURE"
	KindInternal          Kind = "INTERNAL"
)

var (
	// ErrValidation signals the request violated an input or domain invariant.
	ErrValidation = errors.New("invalid shipment input")
	// ErrInvalidStatus is the VALIDATION case for unknown status values.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)
	// ErrMalformedRequest is the VALIDATION case for undecodable request bodies.
	ErrMalformedRequest = fmt.Errorf("%w: malformed request", ErrValidation)
	ErrNotFound         = ports.ErrNotFound
	ErrConflict         = errors.New("shipment conflict")
	ErrStorageFailure   = errors.New("proof storage failure")
	ErrInternal         = errors.New("internal error")

	ErrLedgerUnavailable = ports.ErrLedgerUnavailable
	ErrLedgerRejected    = ports.ErrLedgerRejected
	ErrLedgerTransport   = ports.ErrLedgerTransport
)

// KindOf classifies err into the stable taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrLedgerUnavailable):
		return KindLedgerUnavailable
	case errors.Is(err, ErrLedgerRejected):
		return KindLedgerRejected
	case errors.Is(err, ErrLedgerTransport):
		return KindLedgerTransport
	case errors.Is(err, ErrStorageFailure):
		return KindStorageFailure
	default:
		return KindInternal
	}
}

// CodeOf refines KindOf for the validation sub-cases clients branch on.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return "INVALID_STATUS"
	case errors.Is(err, ErrMalformedRequest):
		return "MALFORMED_REQUEST"
	default:
		return string(KindOf(err))
	}
}

// SentinelFor returns the error a Kind was derived from, so a kind carried
// across a process boundary can be turned back into a comparable error.
func SentinelFor(kind Kind) error {
	switch kind {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindLedgerUnavailable:
		return ErrLedgerUnavailable
	case KindLedgerRejected:
		return ErrLedgerRejected
	case KindLedgerTransport:
		return ErrLedgerTransport
	case KindStorageFailure:
		return ErrStorageFailure
	default:
		return ErrInternal
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrStorageFailure),
		errors.Is(err, ErrLedgerUnavailable),
		errors.Is(err, ErrLedgerRejected),
		errors.Is(err, ErrLedgerTransport),
		errors.Is(err, ErrInternal),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	case errors.Is(err, formdata.ErrMalformedRequest):
		return fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	case errors.Is(err, domain.ErrEmptyTrackingNumber),
		errors.Is(err, domain.ErrEmptyOrigin),
		errors.Is(err, domain.ErrEmptyDestination),
		errors.Is(err, domain.ErrEmptyEnterprise),
		errors.Is(err, domain.ErrEmptyLogistics),
		errors.Is(err, domain.ErrMissingProofFile):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, ports.ErrDuplicateTrackingNumber),
		errors.Is(err, ports.ErrDuplicateID),
		errors.Is(err, domain.ErrTransitionNotAllowed):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

// SentinelForCode is the inverse of CodeOf.
func SentinelForCode(code string) error {
	switch code {
	case "INVALID_STATUS":
		return ErrInvalidStatus
	case "MALFORMED_REQUEST":
		return ErrMalformedRequest
	default:
		return SentinelFor(Kind(code))
	}
}
