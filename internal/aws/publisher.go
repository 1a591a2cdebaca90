package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	log "github.com/sirupsen/logrus"
)

// RetryConfig bounds the publish retry loop. PerAttemptTimeout caps a single
// SendMessage call so one slow attempt cannot eat the whole retry budget.
type RetryConfig struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffFactor     float64
	PerAttemptTimeout time.Duration
}

// DefaultRetryConfig returns the retry policy used unless overridden.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      200 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffFactor:     2.0,
		PerAttemptTimeout: 5 * time.Second,
	}
}

// PublishOptions tune a single publish call.
type PublishOptions struct {
	// Delay overrides the publisher's default delivery delay when non-nil.
	Delay *time.Duration
	// Attributes are sent as SQS message attributes (string type).
	Attributes map[string]string
}

// Outcome is the broker acknowledgment of an accepted message.
type Outcome struct {
	// MessageID is the broker-assigned delivery token.
	MessageID string
}

// Publisher delivers messages to one SQS queue with bounded retries.
// Safe for concurrent use; it holds no per-call state.
type Publisher struct {
	SQS          SQSAPI
	QueueURL     string
	DefaultDelay time.Duration
	Retry        RetryConfig

	logger *log.Entry
	sleep  func(time.Duration)
}

// NewPublisher returns a Publisher bound to a queue URL. defaultDelay is the
// delivery delay applied when a call does not specify its own.
func NewPublisher(sqsClient SQSAPI, queueURL string, defaultDelay time.Duration, retry RetryConfig) *Publisher {
	return &Publisher{
		SQS:          sqsClient,
		QueueURL:     queueURL,
		DefaultDelay: defaultDelay,
		Retry:        retry,
		logger:       log.WithField("component", "sqs-publisher"),
		sleep:        time.Sleep,
	}
}

// Publish sends messageBody to the queue, retrying transient failures with
// capped exponential backoff. Permanent failures return immediately. The
// returned error, when non-nil, is always a *PublishError.
func (p *Publisher) Publish(ctx context.Context, messageBody string, opts PublishOptions) (Outcome, error) {
	delay := p.DefaultDelay
	if opts.Delay != nil {
		delay = *opts.Delay
	}

	input := &sqs.SendMessageInput{
		QueueUrl:     &p.QueueURL,
		MessageBody:  &messageBody,
		DelaySeconds: int32(delay / time.Second),
	}
	if len(opts.Attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range opts.Attributes {
			// using string type for all attrs
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    awsString("String"),
				StringValue: awsString(v),
			}
		}
		input.MessageAttributes = msgAttrs
	}

	var lastErr error
	wait := p.Retry.InitialDelay

	for attempt := 1; attempt <= p.Retry.MaxAttempts; attempt++ {
		out, err := p.send(ctx, input)
		if err == nil {
			if attempt > 1 {
				p.logger.WithFields(log.Fields{
					"queue_url": p.QueueURL,
					"attempt":   attempt,
				}).Info("publish succeeded after retry")
			}
			var id string
			if out.MessageId != nil {
				id = *out.MessageId
			}
			return Outcome{MessageID: id}, nil
		}

		if classifyError(err) == ErrorKindPermanent {
			return Outcome{}, &PublishError{Kind: ErrorKindPermanent, Attempts: attempt, Cause: err}
		}

		lastErr = err
		if attempt < p.Retry.MaxAttempts {
			p.logger.WithFields(log.Fields{
				"queue_url": p.QueueURL,
				"attempt":   attempt,
				"delay":     wait,
				"error":     err,
			}).Warn("publish failed, retrying")

			p.sleep(wait)

			wait = time.Duration(float64(wait) * p.Retry.BackoffFactor)
			if wait > p.Retry.MaxDelay {
				wait = p.Retry.MaxDelay
			}
		}
	}

	return Outcome{}, &PublishError{Kind: ErrorKindTransient, Attempts: p.Retry.MaxAttempts, Cause: lastErr}
}

func (p *Publisher) send(ctx context.Context, input *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	if p.Retry.PerAttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Retry.PerAttemptTimeout)
		defer cancel()
	}
	return p.SQS.SendMessage(ctx, input)
}

// awsString helper
func awsString(s string) *string { return &s }
