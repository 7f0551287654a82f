package doh

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/namehunt-core/internal/core/domain"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second})
	return client, server
}

func TestQueryNS(t *testing.T) {
	tests := []struct {
		name string
		body string
		want struct {
			status  int
			records bool
		}
	}{
		{
			name: "NXDOMAIN",
			body: `{"Status": 3, "Authority": []}`,
			want: struct {
				status  int
				records bool
			}{3, false},
		},
		{
			name: "answer records present",
			body: `{"Status": 0, "Answer": [{"name": "example.com", "type": 2, "data": "ns1.example.com."}]}`,
			want: struct {
				status  int
				records bool
			}{0, true},
		},
		{
			name: "authority records only",
			body: `{"Status": 0, "Authority": [{"name": "example.com", "type": 2, "data": "ns1.example.com."}]}`,
			want: struct {
				status  int
				records bool
			}{0, true},
		},
		{
			name: "empty NOERROR",
			body: `{"Status": 0}`,
			want: struct {
				status  int
				records bool
			}{0, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/dns-query", r.URL.Path)
				assert.Equal(t, "example.com", r.URL.Query().Get("name"))
				assert.Equal(t, "NS", r.URL.Query().Get("type"))
				assert.Equal(t, "application/dns-json", r.Header.Get("Accept"))
				w.Header().Set("Content-Type", "application/dns-json")
				_, _ = w.Write([]byte(tt.body))
			})
			defer server.Close()

			answer, err := client.QueryNS(context.Background(), "example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want.status, answer.Status)
			assert.Equal(t, tt.want.records, answer.HasRecords)
		})
	}
}

func TestQueryNSHTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.QueryNS(context.Background(), "example.com")
	assert.ErrorIs(t, err, domain.ErrLookupFailed)
}

func TestQueryNSMalformedBody(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer server.Close()

	_, err := client.QueryNS(context.Background(), "example.com")
	assert.ErrorIs(t, err, domain.ErrLookupFailed)
}

func TestQueryNSTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second})
	_, err := client.QueryNS(context.Background(), "example.com")
	assert.ErrorIs(t, err, domain.ErrLookupUnreachable)
}
