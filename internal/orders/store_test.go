package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront/internal/cart"
	"github.com/imrishuroy/go-storefront/internal/catalog"
	"github.com/imrishuroy/go-storefront/internal/checkout"
	"github.com/imrishuroy/go-storefront/internal/idempotency"
)

const (
	ordersTable = "orders"
	idempTable  = "idempotency"
)

func sampleCheckout(id string) checkout.Order {
	shoes, _ := catalog.Default().ByID(6)
	return checkout.Order{
		ID: id,
		Customer: checkout.FormData{
			Name:       "Ada",
			Email:      "ada@example.com",
			CardNumber: "4242 4242 4242 1234",
		},
		Items:           []cart.Line{{Product: shoes, Quantity: 1}},
		CouponCode:      "SAVE20",
		Subtotal:        decimal.RequireFromString("120"),
		DiscountPercent: 20,
		Discount:        decimal.RequireFromString("24"),
		Total:           decimal.RequireFromString("96"),
		Timestamp:       time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func idempRecord(key, orderID string) idempotency.Record {
	now := time.Now().UTC()
	return idempotency.Record{
		IdempotencyKey: key,
		Status:         idempotency.StatusInProgress,
		OrderID:        orderID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(48 * time.Hour).Unix(),
	}
}

func TestFromCheckout(t *testing.T) {
	o := FromCheckout(sampleCheckout("order-1"), "key-1")

	if o.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", o.Status)
	}
	if o.CardLast4 != "1234" {
		t.Fatalf("expected last4 1234, got %q", o.CardLast4)
	}
	if o.Total != "96.00" || o.Subtotal != "120.00" || o.Discount != "24.00" {
		t.Fatalf("unexpected money fields: %+v", o)
	}
	if len(o.Items) != 1 || o.Items[0].Name != "Running Shoes" || o.Items[0].UnitPrice != "120.00" {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
	if o.IdempotencyKey != "key-1" {
		t.Fatalf("idempotency key not carried")
	}
	if o.CouponCode != "SAVE20" || o.DiscountPercent != 20 {
		t.Fatalf("expected the applied SAVE20 coupon, got %q at %d%%", o.CouponCode, o.DiscountPercent)
	}
}

func TestLast4(t *testing.T) {
	cases := map[string]string{
		"4242-4242-4242-9876": "9876",
		"123":                 "123",
		"":                    "",
		"ref-ab12":            "12",
	}
	for in, want := range cases {
		if got := last4(in); got != want {
			t.Fatalf("last4(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateWithIdempotencyTransaction_Success(t *testing.T) {
	mock := newMockDynamo()
	store := NewStore(mock, ordersTable)

	order := FromCheckout(sampleCheckout("order-1"), "key-1")
	err := store.CreateWithIdempotencyTransaction(context.Background(), idempTable, idempRecord("key-1", "order-1"), order)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	idempItem, ok := mock.tables[idempTable]["key-1"]
	if !ok {
		t.Fatalf("idempotency item not stored")
	}
	if _, ok := idempItem["expires_at"]; !ok {
		t.Fatalf("expires_at missing in stored idempotency item")
	}

	got, err := store.Get(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatalf("order item not stored")
	}
	if got.CustomerEmail != "ada@example.com" || got.Total != "96.00" {
		t.Fatalf("unexpected stored order: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set")
	}
}

func TestCreateWithIdempotencyTransaction_ExistingKey(t *testing.T) {
	mock := newMockDynamo()
	mock.table(idempTable)["key-2"] = map[string]types.AttributeValue{
		"idempotency_key": &types.AttributeValueMemberS{Value: "key-2"},
		"status":          &types.AttributeValueMemberS{Value: idempotency.StatusDone},
	}
	store := NewStore(mock, ordersTable)

	order := FromCheckout(sampleCheckout("order-2"), "key-2")
	err := store.CreateWithIdempotencyTransaction(context.Background(), idempTable, idempRecord("key-2", "order-2"), order)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if _, ok := mock.tables[ordersTable]["order-2"]; ok {
		t.Fatalf("order must not be written when the transaction is cancelled")
	}
}

func TestCreateWithIdempotencyTransaction_OtherError(t *testing.T) {
	mock := newMockDynamo()
	mock.transactErr = errors.New("throttled")
	store := NewStore(mock, ordersTable)

	err := store.CreateWithIdempotencyTransaction(context.Background(), idempTable, idempRecord("k", "o"), FromCheckout(sampleCheckout("o"), "k"))
	if err == nil || errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected plain transact error, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	store := NewStore(newMockDynamo(), ordersTable)
	o, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o != nil {
		t.Fatalf("expected nil, got %+v", o)
	}
}

func TestUpdateStatus_Condition_SuccessAndFail(t *testing.T) {
	mock := newMockDynamo()
	item, err := attributevalue.MarshalMap(FromCheckout(sampleCheckout("order-10"), "k10"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.table(ordersTable)["order-10"] = item

	store := NewStore(mock, ordersTable)

	// success: PENDING -> PROCESSING
	if err := store.UpdateStatus(context.Background(), "order-10", StatusPending, StatusProcessing); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	// failure: PENDING -> COMPLETED (but current is PROCESSING)
	err = store.UpdateStatus(context.Background(), "order-10", StatusPending, StatusCompleted)
	if !errors.Is(err, ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", err)
	}

	got, _ := store.Get(context.Background(), "order-10")
	if got.Status != StatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", got.Status)
	}
}

func TestIncrementAttempts(t *testing.T) {
	mock := newMockDynamo()
	item, _ := attributevalue.MarshalMap(FromCheckout(sampleCheckout("order-20"), "k20"))
	mock.table(ordersTable)["order-20"] = item
	store := NewStore(mock, ordersTable)

	for want := 1; want <= 3; want++ {
		n, err := store.IncrementAttempts(context.Background(), "order-20")
		if err != nil {
			t.Fatalf("IncrementAttempts: %v", err)
		}
		if n != want {
			t.Fatalf("attempts = %d, want %d", n, want)
		}
	}
}
