package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"order_id", []string{"order", "id"}},
		{"orderID", []string{"order", "id"}},
		{"Order-Id", []string{"order", "id"}},
		{"HTTPServerName", []string{"http", "server", "name"}},
		{"C_CURRENT_CDEMO_SK", []string{"c", "current", "cdemo", "sk"}},
		{"address2 line", []string{"address2", "line"}},
		{"__", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Words(tt.input))
		})
	}
}

func TestReadable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"customer_id", "customer identifier"},
		{"C_CURRENT_CDEMO_SK", "c current customer demographics surrogate key"},
		{"ship_qty", "ship quantity"},
		{"dob", "date of birth"},
		{"adt_load_date", "audit load date"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Readable(tt.input))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Customer Identifier", Title(Readable("customer_id")))
	assert.Equal(t, "", Title(""))
}
