// Package grpc exposes a ledger.Backend as the ledger gateway gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	backend   ledger.Backend
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, b ledger.Backend, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		backend:   b,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a gRPC server with the gateway service and its
// interceptors registered, without binding a listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, l net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil {
		return err
	}

	return nil
}
