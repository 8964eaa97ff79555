package aws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

func TestIsConditionalCheckFailed(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"typed", &types.ConditionalCheckFailedException{}, true},
		{"wrapped", fmt.Errorf("update item: %w", &types.ConditionalCheckFailedException{}), true},
		{"generic api error", &smithy.GenericAPIError{Code: "ConditionalCheckFailedException"}, true},
		{"other api error", &smithy.GenericAPIError{Code: "ThrottlingException"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsConditionalCheckFailed(tc.err); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsTransactionCanceled(t *testing.T) {
	if !IsTransactionCanceled(fmt.Errorf("transact: %w", &types.TransactionCanceledException{})) {
		t.Fatalf("expected wrapped TransactionCanceledException to match")
	}
	if !IsTransactionCanceled(&smithy.GenericAPIError{Code: "TransactionCanceledException"}) {
		t.Fatalf("expected generic api error to match")
	}
	if IsTransactionCanceled(&types.ConditionalCheckFailedException{}) {
		t.Fatalf("conditional check failure is not a cancelled transaction")
	}
}
