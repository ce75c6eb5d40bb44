package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchema(t *testing.T) {
	type args struct {
		Symbol string `json:"symbol" description:"Ticker symbol, e.g. AAPL"`
		Count  int    `json:"count,omitempty" description:"Maximum results"`
		Debug  *bool  `json:"debug,omitempty"`
	}

	schema := CreateSchema(args{})

	assert.Equal(t, "object", schema["type"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, properties, 3)

	symbol, ok := properties["symbol"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", symbol["type"])
	assert.Equal(t, "Ticker symbol, e.g. AAPL", symbol["description"])

	count, ok := properties["count"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", count["type"])

	assert.Equal(t, []string{"symbol"}, RequiredFields(schema))
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")

	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestRequiredFieldsFromJSON(t *testing.T) {
	raw := `{"type":"object","properties":{"symbol":{"type":"string"}},"required":["symbol"]}`

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &schema))

	assert.Equal(t, []string{"symbol"}, RequiredFields(schema))
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symbol": map[string]any{"type": "string"},
			"count":  map[string]any{"type": "integer"},
		},
		"required": []string{"symbol"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{
			name:   "valid",
			params: map[string]any{"symbol": "AAPL", "count": 5},
		},
		{
			name:   "integer decoded as float64",
			params: map[string]any{"symbol": "AAPL", "count": float64(5)},
		},
		{
			name:   "extra fields allowed",
			params: map[string]any{"symbol": "AAPL", "verbose": true},
		},
		{
			name:    "missing required field",
			params:  map[string]any{"count": 5},
			wantErr: "required field is missing",
		},
		{
			name:    "wrong type",
			params:  map[string]any{"symbol": 42},
			wantErr: "expected type string",
		},
		{
			name:    "fractional value for integer",
			params:  map[string]any{"symbol": "AAPL", "count": 5.5},
			wantErr: "expected type integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
