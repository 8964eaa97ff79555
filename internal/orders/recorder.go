package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
)

// Recorder persists finalized checkouts: idempotency record and order in one
// transaction, an order_placed message on SQS, and checkout metrics.
type Recorder struct {
	orders    *Store
	idemp     *idempotency.Store
	publisher *aws.Publisher
	metrics   *aws.Metrics
	logger    *zap.Logger
}

// NewRecorder wires a Recorder. publisher and metrics may be nil.
func NewRecorder(orders *Store, idemp *idempotency.Store, publisher *aws.Publisher, metrics *aws.Metrics, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		orders:    orders,
		idemp:     idemp,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Replay returns the idempotency record for key, or nil if the key is unused.
func (r *Recorder) Replay(ctx context.Context, key string) (*idempotency.Record, error) {
	rec, err := r.idemp.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", key, err)
	}
	return rec, nil
}

// Order looks up a recorded order.
func (r *Recorder) Order(ctx context.Context, orderID string) (*Order, error) {
	return r.orders.Get(ctx, orderID)
}

// Record stores order under key and remembers response as the reply for
// retries with the same key. A claimed key yields ErrDuplicateKey. If the
// order cannot be enqueued the key is marked FAILED and an error returned.
func (r *Recorder) Record(ctx context.Context, key, correlationID string, order checkout.Order, response []byte, status int) (Order, error) {
	log := r.logger.With(zap.String("order_id", order.ID), zap.String("idempotency_key", key))

	record := FromCheckout(order, key)
	err := r.orders.CreateWithIdempotencyTransaction(ctx, r.idemp.Table(), r.idemp.NewRecord(key, order.ID), record)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			log.Info("idempotency key already used")
		}
		return Order{}, err
	}

	if r.publisher.Enabled() {
		err := r.publisher.PublishOrderPlaced(ctx, aws.OrderMessage{
			OrderID:        order.ID,
			IdempotencyKey: key,
			CorrelationID:  correlationID,
			Total:          record.Total,
		})
		if err != nil {
			if mErr := r.idemp.MarkFailed(ctx, key, fmt.Sprintf("sqs_send_failed: %v", err)); mErr != nil {
				log.Error("mark idempotency failed", zap.Error(mErr))
			}
			return record, fmt.Errorf("enqueue order: %w", err)
		}
	}

	if err := r.idemp.MarkDone(ctx, key, string(response), status); err != nil {
		// the worker repairs IN_PROGRESS keys once the order completes
		log.Warn("mark idempotency done", zap.Error(err))
	}

	if r.metrics != nil {
		total, _ := order.Total.Float64()
		err := r.metrics.PutCheckoutMetrics(ctx, aws.CheckoutSample{
			Total:           total,
			Items:           order.ItemCount(),
			DiscountPercent: order.DiscountPercent,
			At:              order.Timestamp,
		})
		if err != nil {
			log.Warn("put checkout metrics", zap.Error(err))
		}
	}

	log.Info("order recorded", zap.String("total", record.Total))
	return record, nil
}
