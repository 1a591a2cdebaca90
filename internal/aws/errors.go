package aws

import (
	"context"
	"errors"
	"fmt"

	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

// ErrorKind classifies a publish failure for retry decisions.
type ErrorKind string

const (
	// ErrorKindTransient covers network errors, timeouts, throttling and
	// broker-side faults; worth retrying.
	ErrorKindTransient ErrorKind = "transient"
	// ErrorKindPermanent covers errors a retry cannot fix, such as a missing
	// queue or a malformed message.
	ErrorKindPermanent ErrorKind = "permanent"
)

// PublishError is the terminal error of a publish operation. Kind tells the
// caller whether retries were even attempted; Attempts is how many sends were
// made before giving up.
type PublishError struct {
	Kind     ErrorKind
	Attempts int
	Cause    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed (%s, %d attempts): %v", e.Kind, e.Attempts, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

var throttleCodes = map[string]bool{
	"ThrottlingException":      true,
	"RequestThrottled":         true,
	"TooManyRequestsException": true,
}

// classifyError decides whether a SendMessage error is worth retrying.
// Modeled SQS exceptions for a missing queue or bad message body are
// permanent; other client faults are too, except throttling. Server faults,
// timeouts and transport errors are transient.
func classifyError(err error) ErrorKind {
	var qne *sqstypes.QueueDoesNotExist
	if errors.As(err, &qne) {
		return ErrorKindPermanent
	}
	var imc *sqstypes.InvalidMessageContents
	if errors.As(err, &imc) {
		return ErrorKindPermanent
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		if throttleCodes[ae.ErrorCode()] {
			return ErrorKindTransient
		}
		if ae.ErrorFault() == smithy.FaultClient {
			return ErrorKindPermanent
		}
		return ErrorKindTransient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTransient
	}

	// Unrecognized errors are almost always transport-level.
	return ErrorKindTransient
}
