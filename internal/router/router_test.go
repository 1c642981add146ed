package router

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"kvops-api/internal/store"
)

// memStore is an in-memory store.Store used to observe what the router
// asks of its collaborator.
type memStore struct {
	tables map[string]*memTable
	calls  int
	err    error // injected failure for every table call
}

func newMemStore() *memStore {
	return &memStore{tables: map[string]*memTable{}}
}

func (s *memStore) Table(name string) store.Table {
	tbl, ok := s.tables[name]
	if !ok {
		tbl = &memTable{name: name, store: s, items: map[string]store.Item{}}
		s.tables[name] = tbl
	}
	return tbl
}

type memTable struct {
	name  string
	store *memStore
	items map[string]store.Item
}

func keyString(key store.Key) string {
	data, _ := json.Marshal(map[string]interface{}(key))
	return string(data)
}

func (t *memTable) call(op string) error {
	t.store.calls++
	if t.store.err != nil {
		return store.NewStoreError(op, t.name, t.store.err)
	}
	if t.name == "" {
		return store.NewStoreError(op, t.name, store.ErrEmptyTableName)
	}
	return nil
}

func (t *memTable) Put(ctx context.Context, item store.Item) error {
	if err := t.call("put"); err != nil {
		return err
	}
	id, _ := item["id"]
	t.items[keyString(store.Key{"id": id})] = item
	return nil
}

func (t *memTable) Get(ctx context.Context, key store.Key) (store.Item, error) {
	if err := t.call("get"); err != nil {
		return nil, err
	}
	item, ok := t.items[keyString(key)]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (t *memTable) Update(ctx context.Context, in store.UpdateInput) (store.Item, error) {
	if err := t.call("update"); err != nil {
		return nil, err
	}
	item, ok := t.items[keyString(in.Key)]
	if !ok {
		item = store.Item{}
		for k, v := range in.Key {
			item[k] = v
		}
		t.items[keyString(in.Key)] = item
	}
	return item, nil
}

func (t *memTable) Delete(ctx context.Context, key store.Key) error {
	if err := t.call("delete"); err != nil {
		return err
	}
	delete(t.items, keyString(key))
	return nil
}

func (t *memTable) Scan(ctx context.Context, filter store.ScanFilter) (*store.ScanResult, error) {
	if err := t.call("scan"); err != nil {
		return nil, err
	}
	result := &store.ScanResult{Items: []store.Item{}}
	for _, item := range t.items {
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func newTestRouter(t *testing.T) (*Router, *memStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	st := newMemStore()
	return New(st, logger), st
}

func TestHandle_MissingOperation(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	cases := []*Request{
		nil,
		{},
		{TableName: "T", Payload: map[string]interface{}{"Item": map[string]interface{}{"id": "1"}}},
	}

	for _, req := range cases {
		_, err := r.Handle(ctx, req)
		if !IsMissingOperation(err) {
			t.Errorf("Handle(%+v) error = %v, want missing operation", req, err)
		}
	}

	if st.calls != 0 {
		t.Errorf("store calls = %d, want 0", st.calls)
	}
}

func TestHandle_UnrecognizedOperation(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Handle(ctx, &Request{Operation: "upsert", TableName: "T"})
	if !IsUnknownOperation(err) {
		t.Fatalf("Handle() error = %v, want unknown operation", err)
	}

	var unknownErr *UnknownOperationError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error %v is not an UnknownOperationError", err)
	}
	if unknownErr.Name != "upsert" {
		t.Errorf("UnknownOperationError.Name = %q, want %q", unknownErr.Name, "upsert")
	}

	if st.calls != 0 {
		t.Errorf("store calls = %d, want 0", st.calls)
	}
}

func TestHandle_Echo(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	payloads := []map[string]interface{}{
		nil,
		{},
		{"somekey": "somevalue"},
		{"nested": map[string]interface{}{"deep": []interface{}{1.0, "two", map[string]interface{}{"three": true}}}},
	}

	for _, payload := range payloads {
		result, err := r.Handle(ctx, &Request{Operation: OpEcho, Payload: payload})
		if err != nil {
			t.Fatalf("Handle(echo) failed: %v", err)
		}
		want := payload
		if want == nil {
			want = map[string]interface{}{}
		}
		if !reflect.DeepEqual(result, interface{}(want)) {
			t.Errorf("echo result = %v, want %v", result, want)
		}
	}

	if st.calls != 0 {
		t.Errorf("store calls = %d, want 0: echo must not touch the store", st.calls)
	}
}

func TestHandle_Ping(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	for _, payload := range []map[string]interface{}{nil, {"ignored": "entirely"}} {
		result, err := r.Handle(ctx, &Request{Operation: OpPing, Payload: payload})
		if err != nil {
			t.Fatalf("Handle(ping) failed: %v", err)
		}
		if result != PingResponse {
			t.Errorf("ping result = %v, want %q", result, PingResponse)
		}
	}

	if st.calls != 0 {
		t.Errorf("store calls = %d, want 0: ping must not touch the store", st.calls)
	}
}

func TestHandle_CreateThenRead(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	item := map[string]interface{}{"id": "1", "name": "Samyu"}
	ack, err := r.Handle(ctx, &Request{
		Operation: OpCreate,
		TableName: "T",
		Payload:   map[string]interface{}{"Item": item},
	})
	if err != nil {
		t.Fatalf("Handle(create) failed: %v", err)
	}
	if !reflect.DeepEqual(ack, interface{}(map[string]interface{}{})) {
		t.Errorf("create ack = %v, want empty", ack)
	}

	result, err := r.Handle(ctx, &Request{
		Operation: OpRead,
		TableName: "T",
		Payload:   map[string]interface{}{"Key": map[string]interface{}{"id": "1"}},
	})
	if err != nil {
		t.Fatalf("Handle(read) failed: %v", err)
	}

	got, ok := result.(map[string]interface{})["Item"]
	if !ok {
		t.Fatalf("read result %v has no Item", result)
	}
	if !reflect.DeepEqual(got, store.Item(item)) {
		t.Errorf("read Item = %v, want %v", got, item)
	}
}

func TestHandle_ReadMissingItem(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	result, err := r.Handle(ctx, &Request{
		Operation: OpRead,
		TableName: "T",
		Payload:   map[string]interface{}{"Key": map[string]interface{}{"id": "nope"}},
	})
	if err != nil {
		t.Fatalf("Handle(read) failed: %v", err)
	}
	if !reflect.DeepEqual(result, interface{}(map[string]interface{}{})) {
		t.Errorf("read of missing item = %v, want empty result", result)
	}
}

func TestHandle_DeleteIsIdempotent(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Handle(ctx, &Request{
		Operation: OpDelete,
		TableName: "T",
		Payload:   map[string]interface{}{"Key": map[string]interface{}{"id": "never-existed"}},
	})
	if err != nil {
		t.Errorf("Handle(delete) of nonexistent key failed: %v", err)
	}
}

func TestHandle_ListEmptyTable(t *testing.T) {
	r, _ := newTestRouter(t)
	ctx := context.Background()

	result, err := r.Handle(ctx, &Request{Operation: OpList, TableName: "T", Payload: map[string]interface{}{}})
	if err != nil {
		t.Fatalf("Handle(list) failed: %v", err)
	}

	list, ok := result.(*ListResult)
	if !ok {
		t.Fatalf("list result is %T, want *ListResult", result)
	}
	if len(list.Items) != 0 || list.Count != 0 {
		t.Errorf("list of empty table = %+v, want empty", list)
	}
}

func TestHandle_StoreErrorPropagatesUnchanged(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	backendErr := errors.New("ResourceNotFoundException: Requested resource not found")
	st.err = backendErr

	_, err := r.Handle(ctx, &Request{
		Operation: OpCreate,
		TableName: "missing-table",
		Payload:   map[string]interface{}{"Item": map[string]interface{}{"id": "1"}},
	})
	if err == nil {
		t.Fatal("Handle() succeeded, want store error")
	}
	if !store.IsStoreError(err) {
		t.Errorf("error %v is not a store error", err)
	}
	if !errors.Is(err, backendErr) {
		t.Errorf("store error %v lost the backend error", err)
	}
	if IsMissingOperation(err) || IsUnknownOperation(err) {
		t.Errorf("store error %v was translated into a router error", err)
	}
}

func TestHandle_LazyTableBinding(t *testing.T) {
	r, st := newTestRouter(t)
	ctx := context.Background()

	// Binding an absent table name is not a router error; the failure
	// surfaces from the store call itself.
	_, err := r.Handle(ctx, &Request{
		Operation: OpCreate,
		Payload:   map[string]interface{}{"Item": map[string]interface{}{"id": "1"}},
	})
	if !store.IsStoreError(err) {
		t.Fatalf("Handle() error = %v, want store error from unbound table", err)
	}
	if st.calls != 1 {
		t.Errorf("store calls = %d, want 1", st.calls)
	}
}

func TestOperations_CoversCatalogue(t *testing.T) {
	r, _ := newTestRouter(t)

	want := map[string]bool{
		OpCreate: true, OpRead: true, OpUpdate: true, OpDelete: true,
		OpList: true, OpEcho: true, OpPing: true,
	}

	names := r.Operations()
	if len(names) != len(want) {
		t.Fatalf("Operations() returned %d names, want %d", len(names), len(want))
	}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected operation %q in catalogue", name)
		}
	}
}
