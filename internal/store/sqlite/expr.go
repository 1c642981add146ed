package sqlite

import (
	"fmt"
	"reflect"
	"strings"
)

// This backend understands the subset of the DynamoDB expression grammar the
// router's payloads actually use: SET and REMOVE clauses on top-level
// attributes, and filters/conditions built from equality comparisons and
// attribute_exists / attribute_not_exists joined with AND. Anything richer
// is rejected rather than silently misread.

// applyUpdateExpression mutates item according to a SET/REMOVE expression
func applyUpdateExpression(item map[string]interface{}, expr string, names map[string]string, values map[string]interface{}) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	for _, clause := range splitClauses(expr) {
		keyword, body, found := strings.Cut(clause, " ")
		if !found {
			return fmt.Errorf("unsupported update expression: %q", expr)
		}
		switch strings.ToUpper(keyword) {
		case "SET":
			for _, assignment := range strings.Split(body, ",") {
				path, valueRef, ok := strings.Cut(assignment, "=")
				if !ok {
					return fmt.Errorf("malformed SET clause: %q", assignment)
				}
				attr, err := resolveName(strings.TrimSpace(path), names)
				if err != nil {
					return err
				}
				value, err := resolveValue(strings.TrimSpace(valueRef), values)
				if err != nil {
					return err
				}
				item[attr] = value
			}
		case "REMOVE":
			for _, path := range strings.Split(body, ",") {
				attr, err := resolveName(strings.TrimSpace(path), names)
				if err != nil {
					return err
				}
				delete(item, attr)
			}
		default:
			return fmt.Errorf("unsupported update clause %q", keyword)
		}
	}

	return nil
}

// splitClauses breaks "SET a = :a REMOVE b" into its keyword-led clauses
func splitClauses(expr string) []string {
	fields := strings.Fields(expr)
	var clauses []string
	var current []string
	for _, field := range fields {
		switch strings.ToUpper(field) {
		case "SET", "REMOVE", "ADD", "DELETE":
			if len(current) > 0 {
				clauses = append(clauses, strings.Join(current, " "))
			}
			current = []string{field}
		default:
			current = append(current, field)
		}
	}
	if len(current) > 0 {
		clauses = append(clauses, strings.Join(current, " "))
	}
	return clauses
}

// matchExpression evaluates a filter or condition expression against an item
func matchExpression(item map[string]interface{}, expr string, names map[string]string, values map[string]interface{}) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true, nil
	}

	for _, term := range splitAnd(expr) {
		ok, err := matchTerm(item, term, names, values)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func splitAnd(expr string) []string {
	var terms []string
	rest := expr
	for {
		idx := indexWordAnd(rest)
		if idx < 0 {
			terms = append(terms, strings.TrimSpace(rest))
			return terms
		}
		terms = append(terms, strings.TrimSpace(rest[:idx]))
		rest = rest[idx+len(" AND "):]
	}
}

func indexWordAnd(s string) int {
	upper := strings.ToUpper(s)
	return strings.Index(upper, " AND ")
}

func matchTerm(item map[string]interface{}, term string, names map[string]string, values map[string]interface{}) (bool, error) {
	term = strings.TrimSpace(term)

	if fn, arg, ok := parseFunction(term); ok {
		attr, err := resolveName(arg, names)
		if err != nil {
			return false, err
		}
		_, present := item[attr]
		switch strings.ToLower(fn) {
		case "attribute_exists":
			return present, nil
		case "attribute_not_exists":
			return !present, nil
		default:
			return false, fmt.Errorf("unsupported expression function %q", fn)
		}
	}

	for _, op := range []string{"<>", "="} {
		if left, right, ok := strings.Cut(term, op); ok {
			attr, err := resolveName(strings.TrimSpace(left), names)
			if err != nil {
				return false, err
			}
			want, err := resolveValue(strings.TrimSpace(right), values)
			if err != nil {
				return false, err
			}
			got, present := item[attr]
			equal := present && reflect.DeepEqual(got, want)
			if op == "=" {
				return equal, nil
			}
			return present && !equal, nil
		}
	}

	return false, fmt.Errorf("unsupported expression term %q", term)
}

func parseFunction(term string) (name, arg string, ok bool) {
	open := strings.Index(term, "(")
	if open < 0 || !strings.HasSuffix(term, ")") {
		return "", "", false
	}
	return strings.TrimSpace(term[:open]), strings.TrimSpace(term[open+1 : len(term)-1]), true
}

// resolveName maps a #placeholder through ExpressionAttributeNames, or
// accepts a literal top-level attribute name
func resolveName(path string, names map[string]string) (string, error) {
	if strings.Contains(path, ".") || strings.Contains(path, "[") {
		return "", fmt.Errorf("nested attribute paths are not supported: %q", path)
	}
	if strings.HasPrefix(path, "#") {
		attr, ok := names[path]
		if !ok {
			return "", fmt.Errorf("expression attribute name %q is not defined", path)
		}
		return attr, nil
	}
	if path == "" {
		return "", fmt.Errorf("empty attribute path")
	}
	return path, nil
}

func resolveValue(ref string, values map[string]interface{}) (interface{}, error) {
	if !strings.HasPrefix(ref, ":") {
		return nil, fmt.Errorf("expected a :value placeholder, got %q", ref)
	}
	value, ok := values[ref]
	if !ok {
		return nil, fmt.Errorf("expression attribute value %q is not defined", ref)
	}
	return value, nil
}
