package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestReportPublishFailure(t *testing.T) {
	mock := &mockCloudWatch{}
	r := NewReporter(mock, "https://sqs.local/orders-queue")

	r.ReportPublishFailure(context.Background())

	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "OrderDispatch", *in.Namespace)

	require.Len(t, in.MetricData, 1)
	datum := in.MetricData[0]
	assert.Equal(t, "PublishFailure", *datum.MetricName)
	assert.Equal(t, float64(1), *datum.Value)
	require.Len(t, datum.Dimensions, 1)
	assert.Equal(t, "https://sqs.local/orders-queue", *datum.Dimensions[0].Value)
}

func TestReportPublishFailureSwallowsClientError(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("cloudwatch down")}
	r := NewReporter(mock, "q")

	// must not panic or propagate
	r.ReportPublishFailure(context.Background())
	assert.Len(t, mock.inputs, 1)
}
