package lxerr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{"configuration", Configuration("leanix.New", "subdomain is required"), ErrConfiguration, KindConfiguration},
		{"validation", Validation("leanix.Search", "searchTerm is required"), ErrValidation, KindValidation},
		{"auth", Auth("auth.GetToken", 401, "Unauthorized", nil), ErrAuth, KindAuth},
		{"query", Query("leanix.Query", 500, "boom", nil), ErrQuery, KindQuery},
		{"mapping", Mapping("leanix.mapFactSheetEdges", io.ErrUnexpectedEOF), ErrMapping, KindMapping},
	}

	all := []error{ErrConfiguration, ErrValidation, ErrAuth, ErrQuery, ErrMapping}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("failed to call tool: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.kind, KindOf(wrapped))
			for _, other := range all {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other), "should not match %v", other)
				}
			}
		})
	}
}

func TestError_MessageContainsStatusAndBody(t *testing.T) {
	err := Query("leanix.Query", 503, "Service Unavailable", nil)
	msg := err.Error()
	assert.Contains(t, msg, "leanix.Query")
	assert.Contains(t, msg, "query error")
	assert.Contains(t, msg, "503")
	assert.Contains(t, msg, "Service Unavailable")
}

func TestError_BodyIsTruncated(t *testing.T) {
	body := strings.Repeat("x", maxBodyExcerpt*2)
	msg := Auth("auth.GetToken", 400, body, nil).Error()
	assert.Less(t, len(msg), maxBodyExcerpt+200)
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestError_Unwrap(t *testing.T) {
	err := Mapping("op", io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	var e *Error
	require.True(t, errors.As(fmt.Errorf("outer: %w", err), &e))
	assert.Equal(t, KindMapping, e.Kind)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "unknown", KindUnknown.String())
}
