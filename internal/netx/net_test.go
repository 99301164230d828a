package netx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_MonotonicFractions(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)
	var got []float64

	pr := NewProgressReader(bytes.NewReader(data), int64(len(data)), func(f float64) { got = append(got, f) })

	buf := make([]byte, 30)
	for {
		_, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, []float64{0.3, 0.6, 0.9, 1}, got)

	// rewinding must not report lower fractions
	_, err := pr.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadAll(pr)
	require.NoError(t, err)
	require.Equal(t, []float64{0.3, 0.6, 0.9, 1}, got)
}

func TestProgressReader_SeekOnNonSeeker(t *testing.T) {
	pr := NewProgressReader(io.MultiReader(strings.NewReader("a")), 1, nil)
	_, err := pr.Seek(0, io.SeekStart)
	require.Error(t, err)
}

func TestPostMultipartFile(t *testing.T) {
	payload := []byte("hello, ipfs")

	t.Run("success", func(t *testing.T) {
		var gotAuth, gotName string
		var gotBody []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			f, fh, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer f.Close()
			gotName = fh.Filename
			gotBody, _ = io.ReadAll(f)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		var last float64
		body, err := PostMultipartFile(context.Background(), ts.Client(), ts.URL, "key-1", "file", "note.txt", payload,
			func(f float64) { last = f })
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, string(body))
		assert.Equal(t, "Bearer key-1", gotAuth)
		assert.Equal(t, "note.txt", gotName)
		assert.Equal(t, payload, gotBody)
		assert.Equal(t, 1.0, last)
	})

	t.Run("non-2xx is an error carrying the body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusPaymentRequired)
		}))
		defer ts.Close()

		_, err := PostMultipartFile(context.Background(), ts.Client(), ts.URL, "", "file", "a", payload, nil)
		require.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("transport error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()

		_, err := PostMultipartFile(context.Background(), nil, url, "", "file", "a", payload, nil)
		require.Error(t, err)
	})
}

func TestFileDisposition(t *testing.T) {
	assert.Equal(t, `form-data; name="file"; filename="note.txt"`, fileDisposition("file", "note.txt"))
	assert.Equal(t, `form-data; name="file"; filename="a \"b\" c\\d"`, fileDisposition("file", `a "b" c\d`))
}

func TestGetBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/bafyok" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("content"))
	}))
	defer ts.Close()

	b, err := GetBody(context.Background(), ts.Client(), ts.URL+"/ipfs/bafyok")
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	_, err = GetBody(context.Background(), ts.Client(), ts.URL+"/ipfs/bafymissing")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}
