// Package netx holds HTTP helpers for pushing payloads to storage endpoints
// while reporting upload progress.
package netx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
)

var ErrUnexpectedStatus = errors.New("unexpected http status")

// ProgressFunc receives the uploaded fraction in [0, 1].
type ProgressFunc func(fraction float64)

// ProgressReader counts bytes flowing through it and reports the fraction of
// total consumed. Reported values never decrease, even if the reader is
// rewound by a retrying transport.
type ProgressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	read int64
	last float64
}

func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, fn: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

// Seek is supported when the wrapped reader is an io.Seeker; SDKs that sign
// or checksum the body rewind it before sending.
func (p *ProgressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("netx: underlying reader is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.mu.Lock()
	p.read = pos
	p.mu.Unlock()
	return pos, nil
}

func (p *ProgressReader) advance(n int64) {
	if p.fn == nil || p.total <= 0 {
		return
	}

	p.mu.Lock()
	p.read += n
	f := float64(p.read) / float64(p.total)
	if f > 1 {
		f = 1
	}
	report := f > p.last
	if report {
		p.last = f
	}
	p.mu.Unlock()

	if report {
		p.fn(f)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// fileDisposition is the form-data Content-Disposition for a file part.
func fileDisposition(field, fileName string) string {
	return fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(fileName))
}

// PostMultipartFile sends data as a single multipart/form-data file part to url
// and returns the response body. token, when set, is sent as a bearer token.
// Progress covers the file bytes only, not the multipart framing.
func PostMultipartFile(ctx context.Context, client *http.Client, url, token, field, fileName string, data []byte, fn ProgressFunc) ([]byte, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fileDisposition(field, fileName))
	h.Set("Content-Type", "application/octet-stream")
	if _, err := mw.CreatePart(h); err != nil {
		return nil, fmt.Errorf("multipart header: %w", err)
	}
	headLen := head.Len()

	// Close appends the closing boundary right after the part header; the file
	// bytes are streamed in between.
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart close: %w", err)
	}
	framing := head.Bytes()
	tail := framing[headLen:]

	body := io.MultiReader(
		bytes.NewReader(framing[:headLen]),
		NewProgressReader(bytes.NewReader(data), int64(len(data)), fn),
		bytes.NewReader(tail),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(headLen + len(data) + len(tail))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if client == nil {
		client = http.DefaultClient
	}
	return do(client, req)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s; body: %s", ErrUnexpectedStatus, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// GetBody fetches url and returns the response body.
func GetBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	return b, nil
}
