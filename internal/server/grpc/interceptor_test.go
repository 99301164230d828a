package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger/memledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer(secret string) *GRPCServer {
	return NewGRPCServer("", logging.Discard(), memledger.New(), secret)
}

func withToken(t *testing.T, owner, secret string) context.Context {
	t.Helper()
	token, err := auth.GenerateToken(owner, []byte(secret), time.Minute)
	require.NoError(t, err)
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(auth.AccessTokenHeaderName, token))
}

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: ledger.FullMethod(method)}
}

func TestInterceptor_PublicMethodsSkipToken(t *testing.T) {
	s := newTestServer("secret")

	for _, m := range []string{ledger.MethodPing, ledger.MethodAccountExists, ledger.MethodGetConfig} {
		called := false
		h := func(ctx context.Context, req any) (any, error) {
			called = true
			return "ok", nil
		}

		resp, err := s.accessTokenInterceptor(context.Background(), nil, info(m), h)
		require.NoError(t, err, m)
		assert.True(t, called, m)
		assert.Equal(t, "ok", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer("secret")

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), &ledger.ListFilesRequest{Owner: "alice"}, info(ledger.MethodListFilesByOwner), h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer("secret")
	ctx := withToken(t, "alice", "other-secret")

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with a foreign token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, &ledger.ListFilesRequest{Owner: "alice"}, info(ledger.MethodListFilesByOwner), h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_OwnerMismatch(t *testing.T) {
	s := newTestServer("secret")
	ctx := withToken(t, "alice", "secret")

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called for another owner")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, &ledger.FinalizeFileRequest{Owner: "bob", Name: "a"}, info(ledger.MethodFinalizeFile), h)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestInterceptor_ValidTokenSetsOwner(t *testing.T) {
	s := newTestServer("secret")
	ctx := withToken(t, "alice", "secret")

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = OwnerFromContext(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, &ledger.GetProfileRequest{Owner: "alice"}, info(ledger.MethodGetProfile), h)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "alice", got)
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := newTestServer("secret")
	want := status.Error(codes.NotFound, "nope")

	_, err := s.loggingInterceptor(context.Background(), nil, info(ledger.MethodGetProfile),
		func(ctx context.Context, req any) (any, error) { return nil, want })
	assert.Equal(t, want, err)

	resp, err := s.loggingInterceptor(context.Background(), nil, info(ledger.MethodPing),
		func(ctx context.Context, req any) (any, error) { return "pong", nil })
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
}

func TestInterceptor_EmptyOwnerUsesToken(t *testing.T) {
	s := newTestServer("secret")
	ctx := withToken(t, "alice", "secret")

	h := func(ctx context.Context, req any) (any, error) {
		return s.EnsureProfile(ctx, req.(*ledger.EnsureProfileRequest))
	}

	_, err := s.accessTokenInterceptor(ctx, &ledger.EnsureProfileRequest{}, info(ledger.MethodEnsureProfile), h)
	require.NoError(t, err)

	p, err := s.backend.GetProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Owner)
}
