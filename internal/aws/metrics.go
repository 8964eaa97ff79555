package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultNamespace is used when no metrics namespace is configured.
const DefaultNamespace = "Storefront/Checkout"

// CheckoutSample is one completed checkout.
type CheckoutSample struct {
	Total           float64
	Items           int
	DiscountPercent int
	At              time.Time
}

// Metrics publishes checkout metrics to CloudWatch.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics publisher for namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Metrics{client: client, namespace: namespace}
}

// PutCheckoutMetrics records OrdersPlaced, OrderTotal and ItemsPerOrder, and
// CouponRedemptions when a discount was applied.
func (m *Metrics) PutCheckoutMetrics(ctx context.Context, s CheckoutSample) error {
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	data := []cwtypes.MetricDatum{
		datum("OrdersPlaced", 1, cwtypes.StandardUnitCount, at),
		datum("OrderTotal", s.Total, cwtypes.StandardUnitNone, at),
		datum("ItemsPerOrder", float64(s.Items), cwtypes.StandardUnitCount, at),
	}
	if s.DiscountPercent > 0 {
		data = append(data, datum("CouponRedemptions", 1, cwtypes.StandardUnitCount, at))
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  awsString(m.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func datum(name string, value float64, unit cwtypes.StandardUnit, at time.Time) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: awsString(name),
		Value:      &value,
		Unit:       unit,
		Timestamp:  &at,
	}
}
