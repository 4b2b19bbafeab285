package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestValidate_Types(t *testing.T) {
	tests := []struct {
		name  string
		prop  *Property
		value any
		want  bool
	}{
		{"string accepts text", &Property{Type: TypeString}, "hello", true},
		{"string accepts number", &Property{Type: TypeString}, 12, true},
		{"string accepts composite", &Property{Type: TypeString}, map[string]any{"a": 1}, true},

		{"integer accepts digit string", &Property{Type: TypeInteger}, "42", true},
		{"integer accepts int", &Property{Type: TypeInteger}, 42, true},
		{"integer accepts whole float", &Property{Type: TypeInteger}, float64(42), true},
		{"integer accepts json number", &Property{Type: TypeInteger}, json.Number("7"), true},
		{"integer accepts empty string", &Property{Type: TypeInteger}, "", true},
		{"integer accepts nil", &Property{Type: TypeInteger}, nil, true},
		{"integer rejects text", &Property{Type: TypeInteger}, "abc", false},
		{"integer rejects decimal string", &Property{Type: TypeInteger}, "4.2", false},
		{"integer rejects negative", &Property{Type: TypeInteger}, -5, false},
		{"integer rejects slice", &Property{Type: TypeInteger}, []any{1}, false},
		{"integer rejects map", &Property{Type: TypeInteger}, map[string]any{}, false},

		{"number accepts float", &Property{Type: TypeNumber}, 1.5, true},
		{"number accepts numeric string", &Property{Type: TypeNumber}, "-1.5e3", true},
		{"number accepts leading dot", &Property{Type: TypeNumber}, ".5", true},
		{"number accepts empty string", &Property{Type: TypeNumber}, "", true},
		{"number rejects text", &Property{Type: TypeNumber}, "1,5", false},
		{"number rejects bool", &Property{Type: TypeNumber}, true, false},
		{"number rejects slice", &Property{Type: TypeNumber}, []any{}, false},

		{"array accepts slice", &Property{Type: TypeArray}, []any{"a"}, true},
		{"array accepts typed slice", &Property{Type: TypeArray}, []string{"a"}, true},
		{"array accepts empty string", &Property{Type: TypeArray}, "", true},
		{"array rejects string", &Property{Type: TypeArray}, "a,b", false},
		{"array rejects map", &Property{Type: TypeArray}, map[string]any{}, false},

		{"unknown type passes", &Property{Type: "boolean"}, "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.prop, tt.value))
		})
	}
}

func TestValidate_Length(t *testing.T) {
	tests := []struct {
		name  string
		prop  *Property
		value any
		want  bool
	}{
		{"within max", &Property{Type: TypeString, MaxLength: intPtr(5)}, "abcde", true},
		{"over max", &Property{Type: TypeString, MaxLength: intPtr(5)}, "abcdef", false},
		{"max counts bytes", &Property{Type: TypeString, MaxLength: intPtr(2)}, "äb", false},
		{"max on number", &Property{Type: TypeInteger, MaxLength: intPtr(2)}, 123, false},
		{"max zero allows empty", &Property{Type: TypeString, MaxLength: intPtr(0)}, "", true},
		{"max zero rejects text", &Property{Type: TypeString, MaxLength: intPtr(0)}, "a", false},
		{"under min", &Property{Type: TypeString, MinLength: intPtr(3)}, "ab", false},
		{"at min", &Property{Type: TypeString, MinLength: intPtr(3)}, "abc", true},
		{"empty string exempt from min", &Property{Type: TypeString, MinLength: intPtr(3)}, "", true},
		{"nil exempt from min", &Property{Type: TypeString, MinLength: intPtr(3)}, nil, true},
		{"both bounds", &Property{Type: TypeString, MinLength: intPtr(22), MaxLength: intPtr(22)}, "abcdefghijklmnopqrstuv", true},
		{"array counts elements", &Property{Type: TypeArray, MaxLength: intPtr(1)}, []any{1, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.prop, tt.value))
		})
	}
}

func TestValidate_Enum(t *testing.T) {
	prop := &Property{Type: TypeString, Enum: []any{"male", "female"}}

	for _, member := range []string{"male", "female"} {
		assert.True(t, Validate(prop, member), member)
	}
	assert.True(t, Validate(prop, ""), "empty string is exempt")
	assert.False(t, Validate(prop, "other"))
	assert.False(t, Validate(prop, "Male"))
	assert.False(t, Validate(prop, []any{"male"}))

	numeric := &Property{Type: TypeInteger, Enum: []any{float64(1), float64(2)}}
	assert.True(t, Validate(numeric, "1"))
	assert.True(t, Validate(numeric, 2))
	assert.False(t, Validate(numeric, 3))
}

func TestValidate_Format(t *testing.T) {
	date := &Property{Type: TypeString, Format: FormatDate}

	tests := []struct {
		value any
		want  bool
	}{
		{"2024-01-31", true},
		{"2024-02-30", true}, // no calendar check
		{"2024-12-01", true},
		{"", true},
		{"2024-13-01", false},
		{"2024-00-10", false},
		{"2024-01-32", false},
		{"24-01-01", false},
		{"2024-01-01T10:00:00Z", false},
		{[]any{"2024-01-01"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Validate(date, tt.value), "%v", tt.value)
	}

	dateTime := &Property{Type: TypeString, Format: FormatDateTime}
	assert.True(t, Validate(dateTime, "not a timestamp"))
	assert.True(t, Validate(dateTime, "2024-01-01T10:00:00+01:00"))
}

func TestValidate_RuleOrder(t *testing.T) {
	// Type failures short-circuit before the enum check.
	prop := &Property{Type: TypeInteger, Enum: []any{"abc"}}
	err := Check(prop, "abc")
	require.Error(t, err)
	assert.Equal(t, errNotInteger.Error(), err.Error())
}

func TestValidate_NilProperty(t *testing.T) {
	assert.False(t, Validate(nil, "value"))
	assert.Error(t, Check(nil, "value"))
}

func TestDocument_ValidateData(t *testing.T) {
	doc, err := Parse("client", []byte(`{
		"properties": {
			"number": {"type": "string", "maxLength": 3},
			"gender": {"type": "string", "enum": ["male", "female"]},
			"due_days": {"type": "integer"}
		},
		"links": []
	}`))
	require.NoError(t, err)

	assert.NoError(t, doc.ValidateData(map[string]any{"number": "K-1", "due_days": "14"}))

	err = doc.ValidateData(map[string]any{
		"number":   "K-0001",
		"gender":   "other",
		"due_days": 14,
		"unknown":  true,
	})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 3)

	var fields []string
	for _, e := range merr.Errors {
		var fe *FieldError
		require.True(t, errors.As(e, &fe))
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"gender", "number", "unknown"}, fields)
}
