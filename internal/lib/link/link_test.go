package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		host    string
		token   string
		want    string
	}{
		{
			name:    "base url override wins",
			baseURL: "https://team.example.com",
			host:    "ignored:9999",
			token:   "abc123",
			want:    "https://team.example.com/member/verify?token=abc123",
		},
		{
			name:    "base url trailing slash trimmed",
			baseURL: "https://team.example.com/",
			token:   "abc123",
			want:    "https://team.example.com/member/verify?token=abc123",
		},
		{
			name:  "localhost is plain http",
			host:  "localhost:3000",
			token: "abc123",
			want:  "http://localhost:3000/member/verify?token=abc123",
		},
		{
			name:  "loopback is plain http",
			host:  "127.0.0.1:3000",
			token: "abc123",
			want:  "http://127.0.0.1:3000/member/verify?token=abc123",
		},
		{
			name:  "public host assumes tls",
			host:  "team.example.com",
			token: "abc123",
			want:  "https://team.example.com/member/verify?token=abc123",
		},
		{
			name:  "empty host falls back to localhost",
			token: "abc123",
			want:  "http://localhost:3000/member/verify?token=abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(tt.baseURL, tt.host, tt.token))
		})
	}
}
