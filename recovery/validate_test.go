package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStructure(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"simple object", `{"a":1}`, true},
		{"extra closer", `{"a":1}}`, false},
		{"missing closer", `{"a":{"b":1}`, false},
		{"nested object", `{"a":{"b":{"c":3}}}`, true},
		{"object with array", `{"a":[1,2,3]}`, true},
		{"unbalanced bracket", `{"a":[1,2}`, false},
		{"escaped quote in string", `{"a":"he said \"hi\""}`, true},
		{"brace inside string", `{"a":"{not a brace}"}`, true},
		{"closer inside string", `{"a":"}}}"}`, true},
		{"escaped backslash before quote", `{"a":"c:\\"}`, true},
		{"must start with brace", `["a"]`, false},
		{"array closer accepted", `{"a":[1,{"b":2}]}`, true},
		{"whitespace trimmed", "  {\"a\":1}  ", true},
		{"empty string", "", false},
		{"bare text", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidStructure(tt.in))
		})
	}
}

func TestValidStructure_BalancedConcatenation(t *testing.T) {
	// Balance check only: structurally balanced but grammatically odd
	// text still passes. That is the design - a cheap pre-filter.
	assert.True(t, ValidStructure(`{"a":1,"b":[{},{}]}`))
	assert.True(t, ValidStructure(`{{}}`))
}
