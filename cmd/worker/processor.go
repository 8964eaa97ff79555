package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront/internal/aws"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
	"github.com/imrishuroy/go-storefront/internal/orders"
)

var errTotalsMismatch = errors.New("recorded totals do not match line items")

// Processor confirms recorded orders: PENDING -> PROCESSING -> COMPLETED.
// A redelivered message resumes an order an earlier attempt left in
// PROCESSING.
type Processor struct {
	idempStore *idempotency.Store
	orderStore *orders.Store
	logger     *zap.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(orderStore *orders.Store, idempStore *idempotency.Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		idempStore: idempStore,
		orderStore: orderStore,
		logger:     logger,
	}
}

// Handle processes an SQS batch. Failed messages are reported individually
// so only they are redelivered (and eventually sent to the DLQ).
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.OrderMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	log := p.logger.With(
		zap.String("order_id", msg.OrderID),
		zap.String("idempotency_key", msg.IdempotencyKey),
		zap.String("correlation_id", msg.CorrelationID),
	)
	log.Info("received order")

	order, err := p.orderStore.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	attempts, err := p.orderStore.IncrementAttempts(ctx, msg.OrderID)
	if err != nil {
		return err
	}
	log = log.With(zap.Int("attempt", attempts))

	// PENDING -> PROCESSING guards against duplicate deliveries
	err = p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusPending, orders.StatusProcessing)
	if errors.Is(err, orders.ErrStatusMismatch) {
		current, getErr := p.orderStore.Get(ctx, msg.OrderID)
		if getErr != nil {
			return fmt.Errorf("failed to re-read order: %w", getErr)
		}
		if current == nil {
			return fmt.Errorf("order disappeared: %s", msg.OrderID)
		}
		switch current.Status {
		case orders.StatusCompleted:
			log.Info("already completed")
			return nil
		case orders.StatusFailed:
			log.Warn("order already failed")
			return nil
		case orders.StatusProcessing:
			// a redelivery after an earlier attempt failed part way
			log.Warn("resuming order left in PROCESSING")
			order = current
		default:
			return fmt.Errorf("unexpected status for order=%s: %s", msg.OrderID, current.Status)
		}
	} else if err != nil {
		return fmt.Errorf("failed to update status to PROCESSING: %w", err)
	}

	if err := verifyTotals(*order); err != nil {
		log.Error("rejecting order", zap.Error(err))
		if uErr := p.advance(ctx, msg.OrderID, orders.StatusFailed); uErr != nil {
			return fmt.Errorf("failed to update status to FAILED: %w", uErr)
		}
		if mErr := p.idempStore.MarkFailed(ctx, msg.IdempotencyKey, err.Error()); mErr != nil {
			return fmt.Errorf("failed to update idempotency: %w", mErr)
		}
		return nil
	}

	if err := p.advance(ctx, msg.OrderID, orders.StatusCompleted); err != nil {
		return fmt.Errorf("failed to update status to COMPLETED: %w", err)
	}

	if err := p.settleIdempotency(ctx, msg.IdempotencyKey, *order); err != nil {
		return err
	}

	log.Info("completed order", zap.String("total", order.Total))
	return nil
}

// advance moves the order out of PROCESSING. Finding it already at status,
// moved there by a concurrent delivery, is not an error.
func (p *Processor) advance(ctx context.Context, orderID, status string) error {
	err := p.orderStore.UpdateStatus(ctx, orderID, orders.StatusProcessing, status)
	if !errors.Is(err, orders.ErrStatusMismatch) {
		return err
	}
	current, getErr := p.orderStore.Get(ctx, orderID)
	if getErr != nil {
		return fmt.Errorf("failed to re-read order: %w", getErr)
	}
	if current != nil && current.Status == status {
		return nil
	}
	return err
}

// settleIdempotency marks the key DONE if the API could not. A DONE record
// already holds the original response and is left alone.
func (p *Processor) settleIdempotency(ctx context.Context, key string, order orders.Order) error {
	rec, err := p.idempStore.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read idempotency: %w", err)
	}
	if rec == nil || rec.Done() {
		return nil
	}
	order.Status = orders.StatusCompleted
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	if err := p.idempStore.MarkDone(ctx, key, string(body), http.StatusCreated); err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}
	return nil
}

// verifyTotals recomputes subtotal, discount and total from the line items.
func verifyTotals(o orders.Order) error {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return fmt.Errorf("%w: product %d price %q", errTotalsMismatch, it.ProductID, it.UnitPrice)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	discount := subtotal.Mul(decimal.NewFromInt(int64(o.DiscountPercent))).Div(decimal.NewFromInt(100))
	total := subtotal.Sub(discount)

	for _, check := range []struct {
		name     string
		recorded string
		want     decimal.Decimal
	}{
		{"subtotal", o.Subtotal, subtotal},
		{"discount", o.Discount, discount},
		{"total", o.Total, total},
	} {
		if check.recorded != check.want.StringFixed(2) {
			return fmt.Errorf("%w: %s is %s, expected %s", errTotalsMismatch, check.name, check.recorded, check.want.StringFixed(2))
		}
	}
	return nil
}
