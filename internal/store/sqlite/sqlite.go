package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"kvops-api/internal/store"
)

// Store is a local key-value backend over a single SQLite database. Every
// collection shares one relational table keyed by (collection name,
// canonical key JSON), so new collections need no DDL.
type Store struct {
	db       *sql.DB
	keyAttrs []string
	logger   *logrus.Logger
}

// DefaultKeyAttributes is the primary-key convention used when none is
// configured
var DefaultKeyAttributes = []string{"id"}

// Open opens the backing SQLite database
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// New creates a new SQLite-backed store. keyAttrs names the item attributes
// that form the primary key of every collection; nil means DefaultKeyAttributes.
func New(db *sql.DB, keyAttrs []string, logger *logrus.Logger) *Store {
	if len(keyAttrs) == 0 {
		keyAttrs = DefaultKeyAttributes
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{db: db, keyAttrs: keyAttrs, logger: logger}
}

// Table binds a handle to the named collection. The name is not checked
// here; an unusable name fails on the first call through the handle.
func (s *Store) Table(name string) store.Table {
	return &table{name: name, store: s}
}

type table struct {
	name  string
	store *Store
}

// canonicalKey renders key attributes as deterministic JSON. encoding/json
// sorts map keys, so equal keys always produce equal strings.
func canonicalKey(key store.Key) (string, error) {
	if len(key) == 0 {
		return "", store.ErrMissingKey
	}
	data, err := json.Marshal(map[string]interface{}(key))
	if err != nil {
		return "", fmt.Errorf("failed to encode key: %w", err)
	}
	return string(data), nil
}

// keyFromItem extracts the configured key attributes from an item
func (t *table) keyFromItem(item store.Item) (store.Key, error) {
	key := store.Key{}
	for _, attr := range t.store.keyAttrs {
		value, ok := item[attr]
		if !ok {
			return nil, fmt.Errorf("%w: item lacks attribute %q", store.ErrMissingKey, attr)
		}
		key[attr] = value
	}
	return key, nil
}

func (t *table) checkName(op string) error {
	if t.name == "" {
		return store.NewStoreError(op, t.name, store.ErrEmptyTableName)
	}
	return nil
}

// Put unconditionally inserts or overwrites one item
func (t *table) Put(ctx context.Context, item store.Item) error {
	if err := t.checkName("put"); err != nil {
		return err
	}

	key, err := t.keyFromItem(item)
	if err != nil {
		return store.NewStoreError("put", t.name, err)
	}
	keyJSON, err := canonicalKey(key)
	if err != nil {
		return store.NewStoreError("put", t.name, err)
	}
	itemJSON, err := json.Marshal(map[string]interface{}(item))
	if err != nil {
		return store.NewStoreError("put", t.name, fmt.Errorf("failed to encode item: %w", err))
	}

	now := time.Now().UTC()
	_, err = t.store.db.ExecContext(ctx, `
		INSERT INTO records (table_name, key_json, item_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (table_name, key_json)
		DO UPDATE SET item_json = excluded.item_json, updated_at = excluded.updated_at
	`, t.name, keyJSON, string(itemJSON), now, now)
	if err != nil {
		return store.NewStoreError("put", t.name, err)
	}

	t.store.logger.WithFields(logrus.Fields{
		"table": t.name,
		"key":   keyJSON,
	}).Debug("Put item")

	return nil
}

// Get performs a point lookup by primary key
func (t *table) Get(ctx context.Context, key store.Key) (store.Item, error) {
	if err := t.checkName("get"); err != nil {
		return nil, err
	}

	keyJSON, err := canonicalKey(key)
	if err != nil {
		return nil, store.NewStoreError("get", t.name, err)
	}

	var itemJSON string
	err = t.store.db.QueryRowContext(ctx, `
		SELECT item_json FROM records WHERE table_name = ? AND key_json = ?
	`, t.name, keyJSON).Scan(&itemJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("get", t.name, err)
	}

	var item map[string]interface{}
	if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
		return nil, store.NewStoreError("get", t.name, fmt.Errorf("failed to decode item: %w", err))
	}

	return store.Item(item), nil
}

// Update applies a partial mutation inside a transaction. Matching DynamoDB
// semantics, updating a missing item creates it from the key plus the SET
// clauses.
func (t *table) Update(ctx context.Context, in store.UpdateInput) (store.Item, error) {
	if err := t.checkName("update"); err != nil {
		return nil, err
	}

	keyJSON, err := canonicalKey(in.Key)
	if err != nil {
		return nil, store.NewStoreError("update", t.name, err)
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, store.NewStoreError("update", t.name, err)
	}
	defer tx.Rollback()

	item := map[string]interface{}{}
	var itemJSON string
	err = tx.QueryRowContext(ctx, `
		SELECT item_json FROM records WHERE table_name = ? AND key_json = ?
	`, t.name, keyJSON).Scan(&itemJSON)
	switch {
	case err == sql.ErrNoRows:
		for attr, value := range in.Key {
			item[attr] = value
		}
	case err != nil:
		return nil, store.NewStoreError("update", t.name, err)
	default:
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, store.NewStoreError("update", t.name, fmt.Errorf("failed to decode item: %w", err))
		}
	}

	if in.ConditionExpression != "" {
		exists := err != sql.ErrNoRows
		subject := item
		if !exists {
			subject = map[string]interface{}{}
		}
		ok, evalErr := matchExpression(subject, in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
		if evalErr != nil {
			return nil, store.NewStoreError("update", t.name, evalErr)
		}
		if !ok {
			return nil, store.NewStoreError("update", t.name, store.ErrConditionFailed)
		}
	}

	if err := applyUpdateExpression(item, in.UpdateExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues); err != nil {
		return nil, store.NewStoreError("update", t.name, err)
	}

	updatedJSON, err := json.Marshal(item)
	if err != nil {
		return nil, store.NewStoreError("update", t.name, fmt.Errorf("failed to encode item: %w", err))
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (table_name, key_json, item_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (table_name, key_json)
		DO UPDATE SET item_json = excluded.item_json, updated_at = excluded.updated_at
	`, t.name, keyJSON, string(updatedJSON), now, now)
	if err != nil {
		return nil, store.NewStoreError("update", t.name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, store.NewStoreError("update", t.name, err)
	}

	return store.Item(item), nil
}

// Delete removes one item by key. A missing key is not an error.
func (t *table) Delete(ctx context.Context, key store.Key) error {
	if err := t.checkName("delete"); err != nil {
		return err
	}

	keyJSON, err := canonicalKey(key)
	if err != nil {
		return store.NewStoreError("delete", t.name, err)
	}

	_, err = t.store.db.ExecContext(ctx, `
		DELETE FROM records WHERE table_name = ? AND key_json = ?
	`, t.name, keyJSON)
	if err != nil {
		return store.NewStoreError("delete", t.name, err)
	}

	return nil
}

// Scan reads one page of the collection ordered by canonical key, applying
// the filter after the page is read, as DynamoDB does.
func (t *table) Scan(ctx context.Context, filter store.ScanFilter) (*store.ScanResult, error) {
	if err := t.checkName("scan"); err != nil {
		return nil, err
	}

	query := `SELECT key_json, item_json FROM records WHERE table_name = ?`
	args := []interface{}{t.name}

	if len(filter.ExclusiveStartKey) > 0 {
		startJSON, err := canonicalKey(filter.ExclusiveStartKey)
		if err != nil {
			return nil, store.NewStoreError("scan", t.name, err)
		}
		query += ` AND key_json > ?`
		args = append(args, startJSON)
	}

	query += ` ORDER BY key_json`

	// Fetch one extra row to detect truncation
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit+1)
	}

	rows, err := t.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("scan", t.name, err)
	}
	defer rows.Close()

	type row struct {
		keyJSON string
		item    map[string]interface{}
	}
	var page []row
	for rows.Next() {
		var keyJSON, itemJSON string
		if err := rows.Scan(&keyJSON, &itemJSON); err != nil {
			return nil, store.NewStoreError("scan", t.name, err)
		}
		var item map[string]interface{}
		if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
			return nil, store.NewStoreError("scan", t.name, fmt.Errorf("failed to decode item: %w", err))
		}
		page = append(page, row{keyJSON: keyJSON, item: item})
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("scan", t.name, err)
	}

	result := &store.ScanResult{Items: []store.Item{}}

	truncated := filter.Limit > 0 && len(page) > int(filter.Limit)
	if truncated {
		page = page[:filter.Limit]
	}

	for _, r := range page {
		if filter.FilterExpression != "" {
			ok, err := matchExpression(r.item, filter.FilterExpression, filter.ExpressionAttributeNames, filter.ExpressionAttributeValues)
			if err != nil {
				return nil, store.NewStoreError("scan", t.name, err)
			}
			if !ok {
				continue
			}
		}
		result.Items = append(result.Items, store.Item(r.item))
	}

	if truncated {
		var lastKey map[string]interface{}
		if err := json.Unmarshal([]byte(page[len(page)-1].keyJSON), &lastKey); err != nil {
			return nil, store.NewStoreError("scan", t.name, fmt.Errorf("failed to decode key: %w", err))
		}
		result.LastEvaluatedKey = store.Key(lastKey)
	}

	return result, nil
}
