package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ordersvc/order-dispatch/internal/aws"
)

// ErrUserNotFound means the order's user id does not resolve. Terminal for
// the request; never retried.
var ErrUserNotFound = errors.New("user not found")

// Policy decides when the caller gets its response relative to the broker
// acknowledgment.
type Policy string

const (
	// PolicyConfirmed waits for the broker acknowledgment; the response
	// truthfully reflects whether the message was accepted.
	PolicyConfirmed Policy = "confirmed"
	// PolicyFireAndForget responds as soon as the message is handed to the
	// publish path; a background failure is reported out of band.
	PolicyFireAndForget Policy = "fire_and_forget"
)

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyConfirmed, PolicyFireAndForget:
		return Policy(s), nil
	case "":
		return PolicyConfirmed, nil
	}
	return "", fmt.Errorf("unknown dispatch policy %q", s)
}

// UserResolver resolves a user id to a user record. Implementations return
// (nil, nil) when the user does not exist.
type UserResolver interface {
	Resolve(ctx context.Context, userID string) (*ResolvedUser, error)
}

// QueuePublisher delivers one message to the configured destination.
type QueuePublisher interface {
	Publish(ctx context.Context, messageBody string, opts aws.PublishOptions) (aws.Outcome, error)
}

// FailureReporter emits the out-of-band signal for publish failures that the
// caller was never told about (fire-and-forget only).
type FailureReporter interface {
	ReportPublishFailure(ctx context.Context)
}

// Result reports a dispatched order back to the HTTP layer. MessageID is the
// broker delivery token and is only set when Confirmed is true.
type Result struct {
	MessageID string
	Confirmed bool
}

// Coordinator runs the order dispatch pipeline: resolve the user, compose the
// message, publish it. Validation happens before Dispatch is called, so no
// invalid request ever reaches the user store or the broker.
type Coordinator struct {
	users    UserResolver
	queue    QueuePublisher
	policy   Policy
	reporter FailureReporter
	logger   *log.Entry

	// background tracks detached fire-and-forget publishes so shutdown can
	// drain them.
	background sync.WaitGroup
}

func NewCoordinator(users UserResolver, queue QueuePublisher, policy Policy, reporter FailureReporter, logger *log.Entry) *Coordinator {
	if logger == nil {
		logger = log.WithField("component", "dispatch-coordinator")
	}
	return &Coordinator{
		users:    users,
		queue:    queue,
		policy:   policy,
		reporter: reporter,
		logger:   logger,
	}
}

// Dispatch submits one validated order for the given user id.
//
// Under PolicyConfirmed the call blocks until the broker acknowledges the
// message (or retries exhaust) and the error reflects the real outcome.
// Under PolicyFireAndForget it returns as soon as the publish is handed off;
// an eventual failure is logged and counted via the FailureReporter, never
// surfaced through the returned Result.
func (c *Coordinator) Dispatch(ctx context.Context, userID string, order Order, correlationID string) (Result, error) {
	user, err := c.users.Resolve(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if user == nil {
		return Result{}, ErrUserNotFound
	}

	msg := ComposeOrderMessage(*user, order)
	body, err := json.Marshal(msg)
	if err != nil {
		return Result{}, fmt.Errorf("marshal order message: %w", err)
	}

	opts := aws.PublishOptions{
		Attributes: map[string]string{"correlation_id": correlationID},
	}

	// The publish must run to completion even if the HTTP caller disconnects:
	// cancelling mid-flight is indistinguishable from broker-side duplication.
	pubCtx := context.WithoutCancel(ctx)

	if c.policy == PolicyFireAndForget {
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			if _, err := c.queue.Publish(pubCtx, string(body), opts); err != nil {
				c.logger.WithFields(log.Fields{
					"user_id":        userID,
					"product":        order.Product,
					"correlation_id": correlationID,
					"error":          err,
				}).Error("background order publish failed")
				if c.reporter != nil {
					c.reporter.ReportPublishFailure(pubCtx)
				}
			}
		}()
		return Result{Confirmed: false}, nil
	}

	out, err := c.queue.Publish(pubCtx, string(body), opts)
	if err != nil {
		return Result{}, fmt.Errorf("publish order for user %s: %w", userID, err)
	}
	return Result{MessageID: out.MessageID, Confirmed: true}, nil
}

// Drain blocks until all detached publishes have finished. Called on shutdown.
func (c *Coordinator) Drain() {
	c.background.Wait()
}
