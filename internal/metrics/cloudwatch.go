package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	log "github.com/sirupsen/logrus"

	"github.com/ordersvc/order-dispatch/internal/aws"
)

const namespace = "OrderDispatch"

// Reporter publishes dispatch metrics to CloudWatch. Under fire-and-forget
// this is the only place a lost message becomes visible, so the reporter is
// wired wherever a publish can fail out of band.
type Reporter struct {
	client   aws.CloudWatchAPI
	queueURL string
	logger   *log.Entry
	nowFunc  func() time.Time
}

// NewReporter returns a Reporter tagging datapoints with the queue URL.
func NewReporter(client aws.CloudWatchAPI, queueURL string) *Reporter {
	return &Reporter{
		client:   client,
		queueURL: queueURL,
		logger:   log.WithField("component", "cloudwatch-metrics"),
		nowFunc:  time.Now,
	}
}

// ReportPublishFailure records one failed publish. Best-effort: a reporter
// error is logged and swallowed, it must never fail the caller.
func (r *Reporter) ReportPublishFailure(ctx context.Context) {
	now := r.nowFunc()
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: awsString(namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("PublishFailure"),
				Value:      awsFloat64(1),
				Unit:       cwtypes.StandardUnitCount,
				Timestamp:  &now,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("QueueUrl"), Value: awsString(r.queueURL)},
				},
			},
		},
	})
	if err != nil {
		r.logger.WithError(err).Warn("failed to put PublishFailure metric")
	}
}

func awsString(s string) *string    { return &s }
func awsFloat64(f float64) *float64 { return &f }
