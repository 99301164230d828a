// Package storage pushes file bytes to a content-addressed storage network
// and returns the identifier (CID) the network assigned to them.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrTransport wraps every failure to store content. Uploads are not
// retried by callers; the whole upload is restarted instead.
var ErrTransport = errors.New("storage transport error")

// DefaultGatewayURL serves content by CID for the Lighthouse network.
const DefaultGatewayURL = "https://gateway.lighthouse.storage/ipfs/"

// Uploader stores data and reports the fraction uploaded via onProgress.
// Reported fractions never decrease and stay within [0, 1].
type Uploader interface {
	Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error)
}

// Fetcher reads stored content back by its storage id.
type Fetcher interface {
	Get(ctx context.Context, id string) ([]byte, error)
}

// GatewayURL returns the retrieval URL of cid under base. An empty base
// selects DefaultGatewayURL.
func GatewayURL(base, cid string) (string, error) {
	if base == "" {
		base = DefaultGatewayURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return u.JoinPath(cid).String(), nil
}

func report(fn func(float64), f float64) {
	if fn != nil {
		fn(f)
	}
}

type timeoutUploader struct {
	next    Uploader
	timeout time.Duration
}

// WithTimeout bounds every Upload of next by d. A non-positive d returns
// next unchanged.
func WithTimeout(next Uploader, d time.Duration) Uploader {
	if d <= 0 {
		return next
	}
	return &timeoutUploader{next: next, timeout: d}
}

func (u *timeoutUploader) Upload(ctx context.Context, data []byte, onProgress func(float64)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return u.next.Upload(ctx, data, onProgress)
}
