package sqlite

import (
	"reflect"
	"testing"
)

func TestApplyUpdateExpression(t *testing.T) {
	tests := []struct {
		name    string
		item    map[string]interface{}
		expr    string
		names   map[string]string
		values  map[string]interface{}
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:   "single set",
			item:   map[string]interface{}{"id": "1"},
			expr:   "SET name = :n",
			values: map[string]interface{}{":n": "samyu"},
			want:   map[string]interface{}{"id": "1", "name": "samyu"},
		},
		{
			name:   "multiple assignments",
			item:   map[string]interface{}{"id": "1"},
			expr:   "SET a = :a, b = :b",
			values: map[string]interface{}{":a": 1.0, ":b": 2.0},
			want:   map[string]interface{}{"id": "1", "a": 1.0, "b": 2.0},
		},
		{
			name:   "set with name placeholder and remove",
			item:   map[string]interface{}{"id": "1", "old": true},
			expr:   "SET #s = :v REMOVE old",
			names:  map[string]string{"#s": "status"},
			values: map[string]interface{}{":v": "done"},
			want:   map[string]interface{}{"id": "1", "status": "done"},
		},
		{
			name: "empty expression is a no-op",
			item: map[string]interface{}{"id": "1"},
			expr: "",
			want: map[string]interface{}{"id": "1"},
		},
		{
			name:    "undefined value placeholder",
			item:    map[string]interface{}{},
			expr:    "SET a = :missing",
			wantErr: true,
		},
		{
			name:    "nested paths are rejected",
			item:    map[string]interface{}{},
			expr:    "SET a.b = :v",
			values:  map[string]interface{}{":v": 1.0},
			wantErr: true,
		},
		{
			name:    "unsupported clause",
			item:    map[string]interface{}{},
			expr:    "ADD counter :one",
			values:  map[string]interface{}{":one": 1.0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyUpdateExpression(tt.item, tt.expr, tt.names, tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("applyUpdateExpression(%q) succeeded, want error", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyUpdateExpression(%q) failed: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(tt.item, tt.want) {
				t.Errorf("item = %v, want %v", tt.item, tt.want)
			}
		})
	}
}

func TestMatchExpression(t *testing.T) {
	item := map[string]interface{}{"id": "1", "kind": "fruit", "count": 3.0}

	tests := []struct {
		expr   string
		names  map[string]string
		values map[string]interface{}
		want   bool
	}{
		{expr: "", want: true},
		{expr: "kind = :k", values: map[string]interface{}{":k": "fruit"}, want: true},
		{expr: "kind = :k", values: map[string]interface{}{":k": "vegetable"}, want: false},
		{expr: "kind <> :k", values: map[string]interface{}{":k": "vegetable"}, want: true},
		{expr: "kind = :k AND count = :c", values: map[string]interface{}{":k": "fruit", ":c": 3.0}, want: true},
		{expr: "kind = :k AND count = :c", values: map[string]interface{}{":k": "fruit", ":c": 4.0}, want: false},
		{expr: "attribute_exists(kind)", want: true},
		{expr: "attribute_exists(color)", want: false},
		{expr: "attribute_not_exists(color)", want: true},
		{expr: "#k = :k", names: map[string]string{"#k": "kind"}, values: map[string]interface{}{":k": "fruit"}, want: true},
	}

	for _, tt := range tests {
		got, err := matchExpression(item, tt.expr, tt.names, tt.values)
		if err != nil {
			t.Errorf("matchExpression(%q) failed: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("matchExpression(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestMatchExpressionUnsupported(t *testing.T) {
	for _, expr := range []string{"count > :c", "begins_with(id, :p)", "kind = literal"} {
		if _, err := matchExpression(map[string]interface{}{}, expr, nil, map[string]interface{}{":c": 1.0, ":p": "x"}); err == nil {
			t.Errorf("matchExpression(%q) succeeded, want error", expr)
		}
	}
}
