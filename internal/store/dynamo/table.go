package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"kvops-api/internal/store"
)

// Store resolves DynamoDB tables by name
type Store struct {
	client Client
	logger *logrus.Logger
}

// New creates a new DynamoDB-backed store
func New(client Client, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{client: client, logger: logger}
}

// Table binds a handle to the named table. Binding is lazy: the name is not
// validated here, and a nonexistent table surfaces as a store error from the
// first call issued through the handle.
func (s *Store) Table(name string) store.Table {
	return &table{name: name, client: s.client, logger: s.logger}
}

type table struct {
	name   string
	client Client
	logger *logrus.Logger
}

// Put unconditionally inserts or overwrites one item
func (t *table) Put(ctx context.Context, item store.Item) error {
	av, err := attributevalue.MarshalMap(map[string]interface{}(item))
	if err != nil {
		return wrapError("put", t.name, fmt.Errorf("failed to marshal item: %w", err))
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	})
	if err != nil {
		return wrapError("put", t.name, err)
	}

	t.logger.WithFields(logrus.Fields{
		"table": t.name,
	}).Debug("Put item")

	return nil
}

// Get performs a point lookup by primary key
func (t *table) Get(ctx context.Context, key store.Key) (store.Item, error) {
	av, err := attributevalue.MarshalMap(map[string]interface{}(key))
	if err != nil {
		return nil, wrapError("get", t.name, fmt.Errorf("failed to marshal key: %w", err))
	}

	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       av,
	})
	if err != nil {
		return nil, wrapError("get", t.name, err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var item map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, wrapError("get", t.name, fmt.Errorf("failed to unmarshal item: %w", err))
	}

	return store.Item(item), nil
}

// Update applies a partial mutation and returns all attributes of the
// updated item
func (t *table) Update(ctx context.Context, in store.UpdateInput) (store.Item, error) {
	key, err := attributevalue.MarshalMap(map[string]interface{}(in.Key))
	if err != nil {
		return nil, wrapError("update", t.name, fmt.Errorf("failed to marshal key: %w", err))
	}

	input := &dynamodb.UpdateItemInput{
		TableName:    aws.String(t.name),
		Key:          key,
		ReturnValues: types.ReturnValueAllNew,
	}

	if in.UpdateExpression != "" {
		input.UpdateExpression = aws.String(in.UpdateExpression)
	}
	if in.ConditionExpression != "" {
		input.ConditionExpression = aws.String(in.ConditionExpression)
	}
	if len(in.ExpressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = in.ExpressionAttributeNames
	}
	if len(in.ExpressionAttributeValues) > 0 {
		values, err := attributevalue.MarshalMap(in.ExpressionAttributeValues)
		if err != nil {
			return nil, wrapError("update", t.name, fmt.Errorf("failed to marshal expression values: %w", err))
		}
		input.ExpressionAttributeValues = values
	}

	out, err := t.client.UpdateItem(ctx, input)
	if err != nil {
		return nil, wrapError("update", t.name, err)
	}

	if len(out.Attributes) == 0 {
		return nil, nil
	}

	var attrs map[string]interface{}
	if err := attributevalue.UnmarshalMap(out.Attributes, &attrs); err != nil {
		return nil, wrapError("update", t.name, fmt.Errorf("failed to unmarshal attributes: %w", err))
	}

	return store.Item(attrs), nil
}

// Delete removes one item by key. DynamoDB treats deleting a missing key as
// success, so idempotence comes for free.
func (t *table) Delete(ctx context.Context, key store.Key) error {
	av, err := attributevalue.MarshalMap(map[string]interface{}(key))
	if err != nil {
		return wrapError("delete", t.name, fmt.Errorf("failed to marshal key: %w", err))
	}

	_, err = t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       av,
	})
	if err != nil {
		return wrapError("delete", t.name, err)
	}

	return nil
}

// Scan reads one page of the table, optionally filtered
func (t *table) Scan(ctx context.Context, filter store.ScanFilter) (*store.ScanResult, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.name),
	}

	if filter.FilterExpression != "" {
		input.FilterExpression = aws.String(filter.FilterExpression)
	}
	if len(filter.ExpressionAttributeNames) > 0 {
		input.ExpressionAttributeNames = filter.ExpressionAttributeNames
	}
	if len(filter.ExpressionAttributeValues) > 0 {
		values, err := attributevalue.MarshalMap(filter.ExpressionAttributeValues)
		if err != nil {
			return nil, wrapError("scan", t.name, fmt.Errorf("failed to marshal expression values: %w", err))
		}
		input.ExpressionAttributeValues = values
	}
	if filter.Limit > 0 {
		input.Limit = aws.Int32(filter.Limit)
	}
	if len(filter.ExclusiveStartKey) > 0 {
		startKey, err := attributevalue.MarshalMap(map[string]interface{}(filter.ExclusiveStartKey))
		if err != nil {
			return nil, wrapError("scan", t.name, fmt.Errorf("failed to marshal start key: %w", err))
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := t.client.Scan(ctx, input)
	if err != nil {
		return nil, wrapError("scan", t.name, err)
	}

	result := &store.ScanResult{
		Items: make([]store.Item, 0, len(out.Items)),
	}

	for _, raw := range out.Items {
		var item map[string]interface{}
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, wrapError("scan", t.name, fmt.Errorf("failed to unmarshal item: %w", err))
		}
		result.Items = append(result.Items, store.Item(item))
	}

	if len(out.LastEvaluatedKey) > 0 {
		var lastKey map[string]interface{}
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &lastKey); err != nil {
			return nil, wrapError("scan", t.name, fmt.Errorf("failed to unmarshal last evaluated key: %w", err))
		}
		result.LastEvaluatedKey = store.Key(lastKey)
	}

	return result, nil
}

// wrapError attaches operation context and normalizes conditional-check
// failures onto the shared sentinel
func wrapError(op, tableName string, err error) error {
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		err = fmt.Errorf("%w: %v", store.ErrConditionFailed, err)
	}
	return store.NewStoreError(op, tableName, err)
}
