package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/ledgerdrive/internal/netx"
)

// GatewayFetcher reads content from an HTTP gateway that serves it by CID.
type GatewayFetcher struct {
	base   string
	client *http.Client
}

// NewGatewayFetcher returns a fetcher for base; see GatewayURL.
func NewGatewayFetcher(base string, client *http.Client) *GatewayFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayFetcher{base: base, client: client}
}

func (f *GatewayFetcher) Get(ctx context.Context, id string) ([]byte, error) {
	u, err := GatewayURL(f.base, id)
	if err != nil {
		return nil, err
	}

	b, err := netx.GetBody(ctx, f.client, u)
	var se *netx.StatusError
	switch {
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return b, nil
}

var _ Fetcher = (*GatewayFetcher)(nil)
