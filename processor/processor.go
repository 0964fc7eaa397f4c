// Package processor defines the contract for the external document
// processor: an opaque, bounded-time operation that takes a local file
// and produces a processed artifact or fails. The mechanism behind it
// (a third-party web service) is deliberately outside this contract.
package processor

import (
	"context"
	"errors"
	"fmt"
)

// Processor produces a processed artifact from a local file. The call
// may take tens of seconds; implementations must respect ctx deadlines
// and return ctx.Err() wrapped in an Error when the deadline passes.
// Whatever the external service does after a timeout is ignored.
type Processor interface {
	// Process uploads the file and returns the local path of the
	// processed artifact.
	Process(ctx context.Context, filePath string) (string, error)
}

// Reason classifies a processing failure for user-facing guidance.
// The runner treats every reason the same; only the message differs.
type Reason string

const (
	// ReasonMalformed means the service rejected the document content.
	ReasonMalformed Reason = "malformed_input"
	// ReasonTimeout means the bounded wait elapsed before a result.
	ReasonTimeout Reason = "timeout"
	// ReasonUnavailable means the service could not be reached or
	// returned a server error after all retries.
	ReasonUnavailable Reason = "service_unavailable"
	// ReasonUnknown covers everything else.
	ReasonUnknown Reason = "unknown"
)

// Error is a processing failure with a human-readable message that is
// forwarded to the user.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("processor: %s: %v", e.Message, e.Err)
	}
	return "processor: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// UserMessage maps a processing failure to guidance suitable for the
// submitting user. Unknown errors get a generic message.
func UserMessage(err error) string {
	var perr *Error
	if !errors.As(err, &perr) {
		return "Processing failed. Please try again later."
	}

	switch perr.Reason {
	case ReasonMalformed:
		return "The document could not be read by the processing service. Please check the file and resubmit."
	case ReasonTimeout:
		return "Processing took too long and was abandoned. Please try again."
	case ReasonUnavailable:
		return "The processing service is temporarily unavailable. Please try again in a few minutes."
	default:
		return "Processing failed: " + perr.Message
	}
}
