package fingerprint_test

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/dmitrymomot/guardkit/pkg/fingerprint"

	"github.com/stretchr/testify/assert"
)

func TestGenerateStable(t *testing.T) {
	t.Parallel()

	r1 := httptest.NewRequest("POST", "/2fa/confirm", nil)
	r1.Header.Set("User-Agent", "Mozilla/5.0")
	r1.Header.Set("Accept-Language", "en-US")
	r1.RemoteAddr = "203.0.113.7:51234"

	r2 := httptest.NewRequest("POST", "/2fa/confirm", nil)
	r2.Header.Set("User-Agent", "Mozilla/5.0")
	r2.Header.Set("Accept-Language", "en-US")
	r2.RemoteAddr = "203.0.113.7:60000" // same host, different ephemeral port

	fp1 := fingerprint.Generate(r1)
	fp2 := fingerprint.Generate(r2)

	assert.Equal(t, fp1, fp2, "fingerprint must not depend on the client port")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), fp1)
	assert.True(t, fingerprint.Match(r2, fp1))
}

func TestGenerateDistinguishesClients(t *testing.T) {
	t.Parallel()

	base := httptest.NewRequest("GET", "/", nil)
	base.Header.Set("User-Agent", "Mozilla/5.0")
	base.RemoteAddr = "203.0.113.7:1000"

	otherUA := httptest.NewRequest("GET", "/", nil)
	otherUA.Header.Set("User-Agent", "curl/8.0")
	otherUA.RemoteAddr = "203.0.113.7:1000"

	otherIP := httptest.NewRequest("GET", "/", nil)
	otherIP.Header.Set("User-Agent", "Mozilla/5.0")
	otherIP.RemoteAddr = "198.51.100.2:1000"

	assert.NotEqual(t, fingerprint.Generate(base), fingerprint.Generate(otherUA))
	assert.NotEqual(t, fingerprint.Generate(base), fingerprint.Generate(otherIP))
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name: "CF-Connecting-IP wins",
			headers: map[string]string{
				"CF-Connecting-IP": "203.0.113.195",
				"X-Forwarded-For":  "192.168.1.1",
				"X-Real-IP":        "10.0.0.1",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "203.0.113.195",
		},
		{
			name: "X-Forwarded-For first valid entry",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip, 198.51.100.178, 203.0.113.195",
				"X-Real-IP":       "192.168.1.1",
			},
			remoteAddr: "10.0.0.1:54321",
			expected:   "198.51.100.178",
		},
		{
			name:       "X-Real-IP fallback",
			headers:    map[string]string{"X-Real-IP": "192.168.1.50"},
			remoteAddr: "10.0.0.1:54321",
			expected:   "192.168.1.50",
		},
		{
			name:       "RemoteAddr fallback",
			headers:    nil,
			remoteAddr: "172.16.0.1:54321",
			expected:   "172.16.0.1",
		},
		{
			name:       "RemoteAddr without port",
			headers:    nil,
			remoteAddr: "172.16.0.1",
			expected:   "172.16.0.1",
		},
		{
			name:       "IPv6 remote address",
			headers:    nil,
			remoteAddr: "[2001:db8::1]:443",
			expected:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, fingerprint.ClientIP(r))
		})
	}
}
