package bi

import (
	"context"
	"errors"

	"brokerage/server/internal/database"
)

var (
	ErrTimeout          = errors.New("dashboard data fetch timed out")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
)

// FailureKind classifies why live dashboard data could not be produced.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureSchema    FailureKind = "schema"
	FailureTimeout   FailureKind = "timeout"
)

// Failure is reported alongside a fallback snapshot.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func classify(err error) *Failure {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailureTimeout, Message: err.Error(), Err: err}
	case errors.Is(err, database.ErrSchemaMissing):
		return &Failure{Kind: FailureSchema, Message: err.Error(), Err: err}
	default:
		return &Failure{Kind: FailureTransport, Message: err.Error(), Err: errors.Join(ErrStoreUnavailable, err)}
	}
}
