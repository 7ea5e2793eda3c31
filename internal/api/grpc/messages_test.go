package grpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDays_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body string
		want Days
	}{
		{`{"total_days": 4}`, 4},
		{`{"total_days": "7"}`, 7},
		{`{"total_days": "abc"}`, 1},
		{`{"total_days": 0}`, 1},
		{`{"total_days": -2}`, 1},
		{`{"total_days": null}`, 1},
		{`{"total_days": true}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req CreateRentalRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.TotalDays)
		})
	}
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{}
	data, err := c.Marshal(&GetItemRequest{ID: "i-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"i-1"}`, string(data))

	var out GetItemRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, "i-1", out.ID)
	assert.NoError(t, c.Unmarshal(nil, &out))
	assert.Error(t, c.Unmarshal([]byte("{"), &out))
}
