package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LedgerServer is the handler set of the gateway service.
type LedgerServer interface {
	Ping(context.Context, *ledger.PingRequest) (*ledger.PingResponse, error)
	AccountExists(context.Context, *ledger.AccountExistsRequest) (*ledger.AccountExistsResponse, error)
	EnsureConfig(context.Context, *ledger.EnsureConfigRequest) (*ledger.TxResponse, error)
	EnsureProfile(context.Context, *ledger.EnsureProfileRequest) (*ledger.TxResponse, error)
	CreateFileRecord(context.Context, *ledger.CreateFileRecordRequest) (*ledger.TxResponse, error)
	RegisterStorage(context.Context, *ledger.RegisterStorageRequest) (*ledger.TxResponse, error)
	FinalizeFile(context.Context, *ledger.FinalizeFileRequest) (*ledger.TxResponse, error)
	SetVisibility(context.Context, *ledger.SetVisibilityRequest) (*ledger.TxResponse, error)
	ListFilesByOwner(context.Context, *ledger.ListFilesRequest) (*ledger.ListFilesResponse, error)
	GetProfile(context.Context, *ledger.GetProfileRequest) (*ledger.ProfileResponse, error)
	GetConfig(context.Context, *ledger.GetConfigRequest) (*ledger.ConfigResponse, error)
}

var _ LedgerServer = (*GRPCServer)(nil)

func unary[Req, Resp any](method string, call func(LedgerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ledger.FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ledger.ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ledger.MethodPing, LedgerServer.Ping),
		unary(ledger.MethodAccountExists, LedgerServer.AccountExists),
		unary(ledger.MethodEnsureConfig, LedgerServer.EnsureConfig),
		unary(ledger.MethodEnsureProfile, LedgerServer.EnsureProfile),
		unary(ledger.MethodCreateFileRecord, LedgerServer.CreateFileRecord),
		unary(ledger.MethodRegisterStorage, LedgerServer.RegisterStorage),
		unary(ledger.MethodFinalizeFile, LedgerServer.FinalizeFile),
		unary(ledger.MethodSetVisibility, LedgerServer.SetVisibility),
		unary(ledger.MethodListFilesByOwner, LedgerServer.ListFilesByOwner),
		unary(ledger.MethodGetProfile, LedgerServer.GetProfile),
		unary(ledger.MethodGetConfig, LedgerServer.GetConfig),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger.json",
}

// toStatus translates a classified ledger error into the status code the
// gateway client maps back to the same kind.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	switch ledger.KindOf(err) {
	case ledger.ErrDuplicateSubmission, ledger.ErrAlreadyInitialized:
		return status.Error(codes.AlreadyExists, err.Error())
	case ledger.ErrValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case ledger.ErrPreconditionFailed:
		return status.Error(codes.FailedPrecondition, err.Error())
	case ledger.ErrNotFound:
		return status.Error(codes.NotFound, err.Error())
	case ledger.ErrUnauthorized:
		return status.Error(codes.PermissionDenied, err.Error())
	case ledger.ErrTransport:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *ledger.PingRequest) (*ledger.PingResponse, error) {
	if err := s.backend.Ping(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &ledger.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) AccountExists(ctx context.Context, req *ledger.AccountExistsRequest) (*ledger.AccountExistsResponse, error) {
	ok, err := s.backend.AccountExists(ctx, req.Address)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ledger.AccountExistsResponse{Exists: ok}, nil
}

func txResponse(tx ledger.TxRef, err error) (*ledger.TxResponse, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &ledger.TxResponse{Tx: tx}, nil
}

// ownerOr returns owner, or the token owner when the request left it empty.
func ownerOr(ctx context.Context, owner string) string {
	if owner == "" {
		owner, _ = OwnerFromContext(ctx)
	}
	return owner
}

func (s *GRPCServer) EnsureConfig(ctx context.Context, req *ledger.EnsureConfigRequest) (*ledger.TxResponse, error) {
	return txResponse(s.backend.EnsureConfig(ctx, ownerOr(ctx, req.Authority)))
}

func (s *GRPCServer) EnsureProfile(ctx context.Context, req *ledger.EnsureProfileRequest) (*ledger.TxResponse, error) {
	return txResponse(s.backend.EnsureProfile(ctx, ownerOr(ctx, req.Owner)))
}

func (s *GRPCServer) CreateFileRecord(ctx context.Context, req *ledger.CreateFileRecordRequest) (*ledger.TxResponse, error) {
	hash, ok := ledger.DigestFromBytes(req.Hash)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "file hash must be 32 bytes")
	}
	return txResponse(s.backend.CreateFileRecord(ctx, ledger.CreateFileParams{
		Owner:      ownerOr(ctx, req.Owner),
		Name:       req.Name,
		Size:       req.Size,
		Hash:       hash,
		ChunkCount: req.ChunkCount,
		Timestamp:  ledger.UnixTime(req.Timestamp),
	}))
}

func (s *GRPCServer) RegisterStorage(ctx context.Context, req *ledger.RegisterStorageRequest) (*ledger.TxResponse, error) {
	root, ok := ledger.DigestFromBytes(req.MerkleRoot)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "merkle root must be 32 bytes")
	}
	return txResponse(s.backend.RegisterStorage(ctx, ownerOr(ctx, req.Owner), req.Name, req.StorageID, root))
}

func (s *GRPCServer) FinalizeFile(ctx context.Context, req *ledger.FinalizeFileRequest) (*ledger.TxResponse, error) {
	return txResponse(s.backend.FinalizeFile(ctx, ownerOr(ctx, req.Owner), req.Name))
}

func (s *GRPCServer) SetVisibility(ctx context.Context, req *ledger.SetVisibilityRequest) (*ledger.TxResponse, error) {
	return txResponse(s.backend.SetVisibility(ctx, ownerOr(ctx, req.Owner), req.Name, req.Public))
}

func (s *GRPCServer) ListFilesByOwner(ctx context.Context, req *ledger.ListFilesRequest) (*ledger.ListFilesResponse, error) {
	files, err := s.backend.ListFilesByOwner(ctx, ownerOr(ctx, req.Owner))
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ledger.ListFilesResponse{Files: make([]ledger.FileRecordMessage, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, ledger.FileRecordToMessage(f))
	}
	return resp, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *ledger.GetProfileRequest) (*ledger.ProfileResponse, error) {
	p, err := s.backend.GetProfile(ctx, ownerOr(ctx, req.Owner))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := ledger.ProfileToMessage(*p)
	return &resp, nil
}

func (s *GRPCServer) GetConfig(ctx context.Context, req *ledger.GetConfigRequest) (*ledger.ConfigResponse, error) {
	c, err := s.backend.GetConfig(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := ledger.ConfigToMessage(*c)
	return &resp, nil
}
