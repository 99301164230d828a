package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/client"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger/memledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret"

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func dial(t *testing.T, addr string, tokens *auth.TokenSource) *client.GRPCClient {
	t.Helper()
	c, err := client.NewGRPCClient(addr, client.Options{
		Tokens:      tokens,
		CallTimeout: time.Second,
		RetryBase:   time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRun_ServesGatewayUntilCancel(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	ml := memledger.New()
	srv := NewGRPCServer(addr, logging.Discard(), ml, testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	alice := dial(t, addr, auth.NewTokenSource("alice", []byte(testSecret), time.Hour))
	require.NoError(t, alice.Ping(ctx))

	_, err := alice.EnsureConfig(ctx, "alice")
	require.NoError(t, err)
	_, err = alice.EnsureProfile(ctx, "alice")
	require.NoError(t, err)

	p, err := alice.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Owner)
	assert.Equal(t, 1, ml.Applied(ledger.MethodEnsureProfile))

	anon := dial(t, addr, nil)
	require.NoError(t, anon.Ping(ctx))
	_, err = anon.EnsureProfile(ctx, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	forged := dial(t, addr, auth.NewTokenSource("bob", []byte("other-secret"), time.Hour))
	_, err = forged.EnsureProfile(ctx, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.Equal(t, 1, ml.Applied(ledger.MethodEnsureProfile))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "Run returned error on graceful stop")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Discard(), memledger.New(), testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, srv.Run(ctx))
}
