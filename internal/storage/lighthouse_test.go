package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLighthouseUploader_Success(t *testing.T) {
	t.Parallel()

	data := make([]byte, 256<<10)
	for i := range data {
		data[i] = byte(i)
	}
	want, err := ComputeCID(data)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/add", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, data, b)

		_, _ = io.WriteString(w, `{"Name":"upload","Hash":"`+want+`","Size":"262144"}`)
	}))
	defer srv.Close()

	got, fn := recorder()
	u := NewLighthouseUploader(srv.URL+"/", "key-1", srv.Client())

	id, err := u.Upload(context.Background(), data, fn)
	require.NoError(t, err)
	assert.Equal(t, want, id)
	assertMonotonic(t, *got)
	assert.Equal(t, 0.0, (*got)[0])
}

func TestLighthouseUploader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"http error", http.StatusUnauthorized, `{"error":"bad key"}`},
		{"bad json", http.StatusOK, `not json`},
		{"no hash", http.StatusOK, `{"Name":"upload"}`},
		{"bad cid", http.StatusOK, `{"Hash":"not-a-cid"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.payload)
			}))
			defer srv.Close()

			_, err := NewLighthouseUploader(srv.URL, "", srv.Client()).Upload(context.Background(), []byte("x"), nil)
			require.ErrorIs(t, err, ErrTransport)
		})
	}
}

func TestLighthouseUploader_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLighthouseUploader(url, "", nil).Upload(context.Background(), []byte("x"), nil)
	require.ErrorIs(t, err, ErrTransport)
}
