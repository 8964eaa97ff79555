package handlers

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// memDynamo is an in-memory DynamoDB keyed by table and order_id or
// idempotency_key.
type memDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// when set, TransactWriteItems signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func newMemDynamo() *memDynamo {
	return &memDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *memDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[name]
}

func (m *memDynamo) count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table(table))
}

func pk(item map[string]types.AttributeValue) (string, error) {
	for _, attr := range []string{"order_id", "idempotency_key"} {
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
			return v.Value, nil
		}
	}
	return "", errors.New("no primary key")
}

func (m *memDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := pk(in.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: m.table(*in.TableName)[k]}, nil
}

func (m *memDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := pk(in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table(*in.TableName)[k]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	set := map[string]string{":done": "status", ":failed": "status", ":rb": "response_body", ":rs": "response_status", ":n": "note"}
	for placeholder, attr := range set {
		if v, ok := in.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *memDynamo) TransactWriteItems(ctx context.Context, in *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	if m.started != nil {
		m.started <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range in.TransactItems {
		k, err := pk(it.Put.Item)
		if err != nil {
			return nil, err
		}
		if _, exists := m.table(*it.Put.TableName)[k]; exists {
			return nil, &types.TransactionCanceledException{}
		}
	}
	for _, it := range in.TransactItems {
		k, _ := pk(it.Put.Item)
		m.table(*it.Put.TableName)[k] = it.Put.Item
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

type memSQS struct {
	mu   sync.Mutex
	sent int
}

func (m *memSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return &sqs.SendMessageOutput{}, nil
}
