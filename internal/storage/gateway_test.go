package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayFetcher_Get(t *testing.T) {
	data := []byte("gateway content")
	id, err := ComputeCID(data)
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/" + id:
			_, _ = w.Write(data)
		case "/ipfs/broken":
			http.Error(w, "bad gateway", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := NewGatewayFetcher(ts.URL+"/ipfs", ts.Client())
	ctx := context.Background()

	got, err := f.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = f.Get(ctx, "bafkmissing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.Get(ctx, "broken")
	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "bad gateway")
}
