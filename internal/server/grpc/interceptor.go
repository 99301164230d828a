package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// publicMethods may be called without a session token.
var publicMethods = map[string]bool{
	ledger.FullMethod(ledger.MethodPing):          true,
	ledger.FullMethod(ledger.MethodAccountExists): true,
	ledger.FullMethod(ledger.MethodGetConfig):     true,
}

// OwnerFromContext returns the token owner the interceptor authenticated.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey).(string)
	return owner, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(auth.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	owner, err := auth.OwnerFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	// an empty request owner is filled in from the token by the handler
	if r, ok := req.(ledger.OwnedRequest); ok && r.RequestOwner() != "" && r.RequestOwner() != owner {
		return nil, status.Error(codes.PermissionDenied, "token owner does not match request owner")
	}

	ctx = context.WithValue(ctx, ownerKey, owner)

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "handled", args...)
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "handled", append(args, "error", err)...)
	default:
		s.logger.Info(ctx, "handled", append(args, "error", err)...)
	}
	return resp, err
}
