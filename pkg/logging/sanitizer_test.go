package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		redacts  string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: "",
		},
		{
			name:     "dsn credentials",
			err:      errors.New(`dial error: crm:s3cret@tcp(localhost:3306)/clonecrm refused`),
			contains: "dial error",
			redacts:  "s3cret",
		},
		{
			name:     "password parameter",
			err:      errors.New("connect failed: password=hunter2 host=db"),
			contains: "connect failed",
			redacts:  "hunter2",
		},
		{
			name:     "bearer token",
			err:      errors.New("401 unauthorized: Bearer sk-abc123def456"),
			contains: "401 unauthorized",
			redacts:  "sk-abc123def456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.err)
			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
			if tt.redacts != "" {
				assert.NotContains(t, got, tt.redacts)
				assert.Contains(t, got, RedactedText)
			}
		})
	}
}

func TestSanitizeQuery(t *testing.T) {
	short := "SELECT custid FROM customer"
	assert.Equal(t, short, SanitizeQuery(short))

	long := "SELECT " + strings.Repeat("c.custid, ", 50) + "c.custname FROM customer c"
	got := SanitizeQuery(long)
	assert.Len(t, got, MaxQueryLogLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
