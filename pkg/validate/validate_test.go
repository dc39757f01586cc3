package validate

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

var noteRules = RuleSet{
	{Field: "title", Type: String, Required: true},
	{Field: "content", Type: String, Required: true},
	{Field: "tags", Type: Array},
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		record     map[string]any
		rules      RuleSet
		wantValid  bool
		wantErrors []string
	}{
		{
			name:      "all fields valid",
			record:    map[string]any{"title": "t", "content": "c", "tags": []any{"a"}},
			rules:     noteRules,
			wantValid: true,
		},
		{
			name:      "optional field absent",
			record:    map[string]any{"title": "t", "content": "c"},
			rules:     noteRules,
			wantValid: true,
		},
		{
			name:      "optional field null",
			record:    map[string]any{"title": "t", "content": "c", "tags": nil},
			rules:     noteRules,
			wantValid: true,
		},
		{
			name:       "missing required fields in declaration order",
			record:     map[string]any{},
			rules:      noteRules,
			wantErrors: []string{"title is required", "content is required"},
		},
		{
			name:       "empty string counts as missing",
			record:     map[string]any{"title": "", "content": "c"},
			rules:      noteRules,
			wantErrors: []string{"title is required"},
		},
		{
			name:       "type mismatch",
			record:     map[string]any{"title": 12.0, "content": "c", "tags": "a,b"},
			rules:      noteRules,
			wantErrors: []string{"title must be a string", "tags must be a array"},
		},
		{
			name:       "object rejects arrays",
			record:     map[string]any{"meta": []any{}},
			rules:      RuleSet{{Field: "meta", Type: Object}},
			wantErrors: []string{"meta must be a object"},
		},
		{
			name:      "native go values",
			record:    map[string]any{"n": 3, "b": true, "o": map[string]string{}, "a": []string{"x"}},
			rules:     RuleSet{{Field: "n", Type: Number}, {Field: "b", Type: Boolean}, {Field: "o", Type: Object}, {Field: "a", Type: Array}},
			wantValid: true,
		},
		{
			name:       "unknown declared type",
			record:     map[string]any{"when": "2024-01-01"},
			rules:      RuleSet{{Field: "when", Type: "date"}},
			wantErrors: []string{"Invalid type for when"},
		},
		{
			name:      "unknown declared type on absent optional field",
			record:    map[string]any{},
			rules:     RuleSet{{Field: "when", Type: "date"}},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.record, tt.rules)

			if res.Valid != tt.wantValid {
				t.Errorf("Validate() valid = %v, want %v (errors %v)", res.Valid, tt.wantValid, res.Errors)
			}
			if len(res.Errors) != len(tt.wantErrors) {
				t.Fatalf("Validate() errors = %v, want %v", res.Errors, tt.wantErrors)
			}
			for i := range tt.wantErrors {
				if res.Errors[i] != tt.wantErrors[i] {
					t.Errorf("Validate() errors[%d] = %q, want %q", i, res.Errors[i], tt.wantErrors[i])
				}
			}
		})
	}
}

func TestResult_Err(t *testing.T) {
	res := Validate(map[string]any{}, noteRules)

	err := res.Err()
	if err == nil {
		t.Fatal("Err() expected error for invalid result")
	}

	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Err() type = %T, want *Error", err)
	}
	if verr.Message != "title is required" {
		t.Errorf("Err() message = %q, want first error", verr.Message)
	}

	if Validate(map[string]any{"title": "a", "content": "b"}, noteRules).Err() != nil {
		t.Error("Err() expected nil for valid result")
	}
}

var knownTypes = []Type{String, Number, Array, Object, Boolean}

func drawValue(t *rapid.T, label string) (any, Type, bool) {
	kind := rapid.SampledFrom([]string{"absent", "null", "empty", "string", "number", "array", "object", "boolean"}).Draw(t, label)

	switch kind {
	case "null":
		return nil, "", true
	case "empty":
		return "", String, true
	case "string":
		return rapid.StringN(1, 10, -1).Draw(t, label+"-s"), String, true
	case "number":
		return rapid.Float64().Draw(t, label+"-n"), Number, true
	case "array":
		return []any{rapid.String().Draw(t, label+"-a")}, Array, true
	case "object":
		return map[string]any{"k": rapid.Int().Draw(t, label+"-o")}, Object, true
	case "boolean":
		return rapid.Bool().Draw(t, label+"-b"), Boolean, true
	}
	return nil, "", false
}

// Valid iff every required field is present, non-empty and correctly typed,
// and every other present field is correctly typed.
func TestValidate_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "fields")

		rules := make(RuleSet, 0, n)
		record := make(map[string]any)
		want := true

		for i := 0; i < n; i++ {
			field := fmt.Sprintf("f%d", i)
			rule := Rule{
				Field:    field,
				Type:     rapid.SampledFrom(knownTypes).Draw(t, field+"-type"),
				Required: rapid.Bool().Draw(t, field+"-required"),
			}
			rules = append(rules, rule)

			value, actual, present := drawValue(t, field)
			if present {
				record[field] = value
			}

			switch {
			case !present || value == nil:
				if rule.Required {
					want = false
				}
			case actual == String && value == "":
				if rule.Required || rule.Type != String {
					want = false
				}
			case actual != rule.Type:
				want = false
			}
		}

		res := Validate(record, rules)
		if res.Valid != want {
			t.Fatalf("Validate(%v) valid = %v, want %v (errors %v)", record, res.Valid, want, res.Errors)
		}
		if res.Valid != (len(res.Errors) == 0) {
			t.Fatalf("Validate() valid = %v but errors = %v", res.Valid, res.Errors)
		}
	})
}
