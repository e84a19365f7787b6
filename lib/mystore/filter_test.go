package mystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	testCases := []struct {
		name    string
		filters []Filter
		want    bool
	}{
		{name: "No filters", filters: nil, want: true},
		{name: "Equal", filters: []Filter{{Field: "ItemID", Compare: "=", Value: 1}}, want: true},
		{name: "Not equal", filters: []Filter{{Field: "ItemID", Compare: "!=", Value: 1}}, want: false},
		{name: "Type mismatch", filters: []Filter{{Field: "ItemID", Compare: "=", Value: int64(1)}}, want: false},
		{name: "Unknown field", filters: []Filter{{Field: "Color", Compare: "=", Value: "red"}}, want: false},
		{name: "Unsupported operator", filters: []Filter{{Field: "ItemID", Compare: ">", Value: 0}}, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matches(reservation, tc.filters))
		})
	}
}
