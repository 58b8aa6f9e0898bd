package fingerprint

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestHasher_HeaderPreferred(t *testing.T) {
	hasher := NewRequestHasher()

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "Already prefixed",
			header:   "fp_abc123",
			expected: "fp_abc123",
		},
		{
			name:     "Bare value gets prefixed",
			header:   "abc123",
			expected: "fp_abc123",
		},
		{
			name:     "Surrounding whitespace trimmed",
			header:   "  fp_abc123  ",
			expected: "fp_abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/auth/register", nil)
			r.Header.Set(Header, tt.header)

			assert.Equal(t, tt.expected, hasher.Fingerprint(r))
		})
	}
}

func TestRequestHasher_LongHeaderHashed(t *testing.T) {
	hasher := NewRequestHasher()

	r := httptest.NewRequest("POST", "/api/auth/register", nil)
	r.Header.Set(Header, strings.Repeat("x", 200))

	fp := hasher.Fingerprint(r)
	assert.True(t, strings.HasPrefix(fp, "fp_"))
	assert.Len(t, fp, len("fp_")+12)
}

func TestRequestHasher_Fallback(t *testing.T) {
	hasher := NewRequestHasher()

	newReq := func(addr, ua string) (fp string) {
		r := httptest.NewRequest("POST", "/api/auth/register", nil)
		r.RemoteAddr = addr
		r.Header.Set("User-Agent", ua)
		r.Header.Set("Accept-Language", "en-US")
		return hasher.Fingerprint(r)
	}

	a := newReq("10.0.0.1:1234", "Mozilla/5.0")
	b := newReq("10.0.0.1:5678", "Mozilla/5.0")
	c := newReq("10.0.0.2:1234", "Mozilla/5.0")

	assert.True(t, strings.HasPrefix(a, "fp_"))
	// The client port must not change the fingerprint.
	assert.Equal(t, a, b)
	// A different host must.
	assert.NotEqual(t, a, c)
}
