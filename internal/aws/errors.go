package aws

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// IsConditionalCheckFailed reports whether err is a failed DynamoDB
// ConditionExpression, typed or as a generic API error.
func IsConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	return hasErrorCode(err, "ConditionalCheckFailedException")
}

// IsTransactionCanceled reports whether a TransactWriteItems call was
// cancelled, which for our writes means a condition failed.
func IsTransactionCanceled(err error) bool {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return true
	}
	return hasErrorCode(err, "TransactionCanceledException")
}

func hasErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
