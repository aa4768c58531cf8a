package cleanscore

import (
	"errors"
	"fmt"
)

// Messages that are part of the JSON error contract.
const (
	MsgInsufficientArguments = "Insufficient arguments"
	MsgNoSignal              = "No image or description provided"
)

var (
	// ErrNoSignal is returned by fusion when neither signal produced a score.
	ErrNoSignal = errors.New(MsgNoSignal) //nolint:staticcheck // ST1005: message is part of the wire contract

	// ErrImageTooLarge is wrapped by an *AcquireError when an image exceeds MaxImageBytes.
	ErrImageTooLarge = errors.New("file too large")

	// ErrNoNumericScore is returned when a judge response carries no number at all.
	ErrNoNumericScore = errors.New("no numeric score in response")
)

// Signal identifies one of the two report inputs.
type Signal string

const (
	SignalImage Signal = "image"
	SignalText  Signal = "text"
)

// ArgumentError reports invalid invocation arguments. Fatal, pre-flight.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

// CredentialError reports a missing external-service credential. Fatal, pre-flight.
type CredentialError struct {
	Service string // e.g. "OpenRouter"
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("Missing %s API key", e.Service)
}

// AcquireErrorKind classifies image acquisition failures.
type AcquireErrorKind int

const (
	ReadFailed AcquireErrorKind = iota
	FetchFailed
	DecodeFailed
)

func (k AcquireErrorKind) String() string {
	switch k {
	case FetchFailed:
		return "fetch failed"
	case DecodeFailed:
		return "decode failed"
	default:
		return "read failed"
	}
}

// AcquireError is a signal-local failure to obtain a decoded image.
type AcquireError struct {
	Kind AcquireErrorKind
	Ref  string
	Err  error
}

func (e *AcquireError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("image %s: %s", e.Kind, e.Ref)
	}
	return fmt.Sprintf("image %s: %s: %v", e.Kind, e.Ref, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// ScoringError is a signal-local classifier or judge failure.
type ScoringError struct {
	Signal Signal
	Err    error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s scoring failed: %v", e.Signal, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// IsFatal reports whether err must fail the whole report rather than a single signal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var argErr *ArgumentError
	var credErr *CredentialError
	return errors.As(err, &argErr) || errors.As(err, &credErr) || errors.Is(err, ErrNoSignal)
}
