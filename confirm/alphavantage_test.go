package confirm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirm_MissingKeySkipsRequest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	client := NewAlphaVantageClient("", srv.URL, 2)
	assert.True(t, client.Confirm(context.Background(), "XAUUSD", "BUY"))
	assert.Zero(t, hits.Load(), "no credential means no request")
}

func TestConfirm_DefaultsToAllow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"sma data present", http.StatusOK, `{"Technical Analysis: SMA": {"2026-08-28": {"SMA": "2400.1"}}}`},
		{"rate limited", http.StatusOK, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`},
		{"empty payload", http.StatusOK, `{}`},
		{"server error", http.StatusInternalServerError, `boom`},
		{"garbage body", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "SMA", r.URL.Query().Get("function"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			t.Cleanup(srv.Close)

			client := NewAlphaVantageClient("test-key", srv.URL, 2)
			assert.True(t, client.Confirm(context.Background(), "XAUUSD", "BUY"))
		})
	}
}

func TestConfirm_TransportFailureAllows(t *testing.T) {
	t.Parallel()

	// Point at a closed server: the transport error must not become a deny.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewAlphaVantageClient("test-key", srv.URL, 1)
	assert.True(t, client.Confirm(context.Background(), "EURUSD", "SELL"))
}
