// Package validate checks decoded request bodies against ordered,
// declarative rule sets.
package validate

import (
	"fmt"
	"reflect"
)

type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Array   Type = "array"
	Object  Type = "object"
	Boolean Type = "boolean"
)

type Rule struct {
	Field    string
	Type     Type
	Required bool
}

// RuleSet is evaluated in declaration order.
type RuleSet []Rule

type Result struct {
	Valid  bool
	Errors []string
}

// First returns the first collected message, or "" when the record is valid.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Err converts a failed result into an *Error carrying the first message.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Message: r.First()}
}

type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validate(record map[string]any, rules RuleSet) Result {
	errors := make([]string, 0)

	for _, rule := range rules {
		value, present := record[rule.Field]

		if rule.Required && isEmpty(value, present) {
			errors = append(errors, fmt.Sprintf("%s is required", rule.Field))
			continue
		}

		if !present || value == nil {
			continue
		}

		switch rule.Type {
		case String, Number, Array, Object, Boolean:
			if !matches(value, rule.Type) {
				errors = append(errors, fmt.Sprintf("%s must be a %s", rule.Field, rule.Type))
			}
		default:
			errors = append(errors, fmt.Sprintf("Invalid type for %s", rule.Field))
		}
	}

	return Result{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func matches(value any, t Type) bool {
	kind := reflect.TypeOf(value).Kind()

	switch t {
	case String:
		return kind == reflect.String
	case Number:
		switch kind {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case Array:
		return kind == reflect.Slice || kind == reflect.Array
	case Object:
		return kind == reflect.Map || kind == reflect.Struct
	case Boolean:
		return kind == reflect.Bool
	}
	return false
}
