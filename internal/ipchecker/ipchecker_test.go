package ipchecker

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	type tTestCase struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}
	testCases := []tTestCase{
		{
			name:       "real_ip",
			headers:    map[string]string{"X-Real-IP": "10.0.0.7", "X-Forwarded-For": "10.0.0.8"},
			remoteAddr: "192.0.2.1:5000",
			expected:   "10.0.0.7",
		},
		{
			name:       "forwarded_for_first_entry",
			headers:    map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1"},
			remoteAddr: "192.0.2.1:5000",
			expected:   "203.0.113.5",
		},
		{
			name:       "garbage_headers_fall_back_to_remote_addr",
			headers:    map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "nope"},
			remoteAddr: "192.0.2.1:5000",
			expected:   "192.0.2.1",
		},
		{
			name:       "ipv6_remote_addr",
			remoteAddr: "[2001:db8::1]:443",
			expected:   "2001:db8::1",
		},
		{
			name:       "remote_addr_without_port",
			remoteAddr: "192.0.2.9",
			expected:   "192.0.2.9",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = testCase.remoteAddr
			for key, value := range testCase.headers {
				req.Header.Set(key, value)
			}

			assert.Equal(t, testCase.expected, ClientIP(req).String())
		})
	}
}

func TestClientIPUnknown(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "pipe"

	assert.Nil(t, ClientIP(req))
}
