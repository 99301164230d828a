package client

import (
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
)

// Client is a ledger backend reached over a network connection that must be
// released when the session ends.
type Client interface {
	ledger.Backend
	Close() error
}

var _ Client = (*GRPCClient)(nil)
