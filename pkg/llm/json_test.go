package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"name": "Segmen A", "sql": "SELECT 1"}`,
			expected: `{"name": "Segmen A", "sql": "SELECT 1"}`,
		},
		{
			name:     "fenced json",
			input:    "```json\n{\"name\": \"Segmen A\"}\n```",
			expected: `{"name": "Segmen A"}`,
		},
		{
			name:     "generic fence",
			input:    "```\n{\"name\": \"Segmen A\"}\n```",
			expected: `{"name": "Segmen A"}`,
		},
		{
			name:     "surrounding prose",
			input:    "Here is the result:\n{\"name\": \"Segmen A\"}\nHope that helps!",
			expected: `{"name": "Segmen A"}`,
		},
		{
			name:     "nested object",
			input:    `{"a": {"b": "{not a brace}"}}`,
			expected: `{"a": {"b": "{not a brace}"}}`,
		},
		{
			name:     "array",
			input:    `[{"a": 1}, {"a": 2}]`,
			expected: `[{"a": 1}, {"a": 2}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSON_RepairsMalformedOutput(t *testing.T) {
	// Single quotes and a trailing comma: invalid JSON, recoverable by repair.
	got, err := ExtractJSON(`{'name': 'Segmen A',}`)
	require.NoError(t, err)

	parsed, err := ParseJSONResponse[map[string]string](got)
	require.NoError(t, err)
	assert.Equal(t, "Segmen A", parsed["name"])
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("there is no structured data here")
	assert.Error(t, err)
}

func TestParseJSONResponse(t *testing.T) {
	type metadata struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	result, err := ParseJSONResponse[metadata]("```json\n{\"name\": \"Pelanggan Aktif\", \"description\": \"Semua pelanggan aktif\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Pelanggan Aktif", result.Name)
	assert.Equal(t, "Semua pelanggan aktif", result.Description)
}
