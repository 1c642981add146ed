package router

import (
	"context"

	"kvops-api/internal/store"
)

// The actions decode payload fields with best-effort casts and hand the
// result to the store as-is. A payload of the wrong shape reaches the
// backend and is rejected there, so every malformed-payload failure shares
// the store-error surface instead of growing a second taxonomy.

// ListResult is the result of the list operation
type ListResult struct {
	Items            []store.Item `json:"Items"`
	Count            int          `json:"Count"`
	LastEvaluatedKey store.Key    `json:"LastEvaluatedKey,omitempty"`
}

func (r *Router) create(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	if err := tbl.Put(ctx, store.Item(asMap(payload["Item"]))); err != nil {
		return nil, err
	}
	// The store's write acknowledgment is empty on success
	return map[string]interface{}{}, nil
}

func (r *Router) read(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	item, err := tbl.Get(ctx, store.Key(asMap(payload["Key"])))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return map[string]interface{}{}, nil
	}
	return map[string]interface{}{"Item": item}, nil
}

func (r *Router) update(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	attrs, err := tbl.Update(ctx, store.UpdateInput{
		Key:                       store.Key(asMap(payload["Key"])),
		UpdateExpression:          asString(payload["UpdateExpression"]),
		ConditionExpression:       asString(payload["ConditionExpression"]),
		ExpressionAttributeNames:  asStringMap(payload["ExpressionAttributeNames"]),
		ExpressionAttributeValues: asMap(payload["ExpressionAttributeValues"]),
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Attributes": attrs}, nil
}

func (r *Router) delete(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	if err := tbl.Delete(ctx, store.Key(asMap(payload["Key"]))); err != nil {
		return nil, err
	}
	return map[string]interface{}{}, nil
}

func (r *Router) list(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	result, err := tbl.Scan(ctx, store.ScanFilter{
		FilterExpression:          asString(payload["FilterExpression"]),
		ExpressionAttributeNames:  asStringMap(payload["ExpressionAttributeNames"]),
		ExpressionAttributeValues: asMap(payload["ExpressionAttributeValues"]),
		Limit:                     asInt32(payload["Limit"]),
		ExclusiveStartKey:         store.Key(asMap(payload["ExclusiveStartKey"])),
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:            result.Items,
		Count:            len(result.Items),
		LastEvaluatedKey: result.LastEvaluatedKey,
	}, nil
}

func (r *Router) echo(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	if payload == nil {
		return map[string]interface{}{}, nil
	}
	return payload, nil
}

func (r *Router) ping(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error) {
	return PingResponse, nil
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringMap(v interface{}) map[string]string {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	m := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			m[k] = s
		}
	}
	return m
}

func asInt32(v interface{}) int32 {
	// JSON numbers decode as float64
	switch n := v.(type) {
	case float64:
		return int32(n)
	case int:
		return int32(n)
	case int32:
		return n
	}
	return 0
}
