package store

import (
	"context"
)

// Item is one record in a collection, as decoded from JSON.
type Item map[string]interface{}

// Key identifies a single item by its primary key attributes.
type Key map[string]interface{}

// UpdateInput describes a partial mutation of one item. The expression
// fields follow the store's native update-expression grammar and are passed
// through to the backend untouched.
type UpdateInput struct {
	Key                       Key
	UpdateExpression          string
	ConditionExpression       string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]interface{}
}

// ScanFilter narrows a full collection scan. The zero value means
// "return everything".
type ScanFilter struct {
	FilterExpression          string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]interface{}
	Limit                     int32
	ExclusiveStartKey         Key
}

// ScanResult holds one page of scan output. LastEvaluatedKey is nil unless
// the scan was truncated by the backend.
type ScanResult struct {
	Items            []Item
	LastEvaluatedKey Key
}

// Table is the minimal capability set consumed from a named collection.
type Table interface {
	// Put unconditionally inserts or overwrites one item.
	Put(ctx context.Context, item Item) error

	// Get performs a point lookup. A missing item is (nil, nil), not an error.
	Get(ctx context.Context, key Key) (Item, error)

	// Update applies a partial mutation and returns the updated attributes.
	Update(ctx context.Context, in UpdateInput) (Item, error)

	// Delete removes one item by key. Deleting a nonexistent key succeeds.
	Delete(ctx context.Context, key Key) error

	// Scan reads the collection, optionally filtered, one page at a time.
	Scan(ctx context.Context, filter ScanFilter) (*ScanResult, error)
}

// Store resolves named collections. Table never fails: binding is lazy and
// a bad name surfaces only when the returned handle issues a call the
// backend rejects.
type Store interface {
	Table(name string) Table
}
