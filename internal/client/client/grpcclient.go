package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/ledgerdrive/internal/auth"
	"github.com/dmitrijs2005/ledgerdrive/internal/client/models"
	"github.com/dmitrijs2005/ledgerdrive/internal/ledger"
	"github.com/dmitrijs2005/ledgerdrive/internal/logging"
	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Options tune a GRPCClient. Zero values fall back to the defaults below.
type Options struct {
	// Tokens signs every call. Without it calls go out unauthenticated and
	// only Ping will succeed against a gateway that enforces auth.
	Tokens *auth.TokenSource
	// CallTimeout bounds one attempt of one call.
	CallTimeout time.Duration
	// Retries is how many times a call that failed with a transient
	// status is resubmitted.
	Retries uint64
	// RetryBase is the first backoff interval; it doubles per attempt.
	RetryBase time.Duration
	Logger    logging.Logger
}

const (
	DefaultCallTimeout = 10 * time.Second
	DefaultRetries     = 2
	DefaultRetryBase   = 200 * time.Millisecond
)

// GRPCClient talks to the ledger gateway daemon.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	opts        Options
	logger      logging.Logger
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(auth.AccessTokenHeaderName)
	md.Set(auth.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.opts.Tokens != nil {
		token, err := s.opts.Tokens.Token()
		switch {
		case errors.Is(err, auth.ErrNoOwner):
			// logged out: only public methods will be accepted
		case err != nil:
			return status.Error(codes.Unauthenticated, err.Error())
		default:
			ctx = withAccessToken(ctx, token)
		}
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a lazily connecting client for the gateway at
// endpointURL. Extra dial options are appended after the defaults, which
// lets tests swap in an in-memory dialer.
func NewGRPCClient(endpointURL string, opts Options, dialOpts ...grpc.DialOption) (*GRPCClient, error) {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	c := &GRPCClient{endpointURL: endpointURL, opts: opts, logger: opts.Logger.With("module", "ledger_client")}

	all := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(ledger.CodecName())),
	}, dialOpts...)

	conn, err := grpc.NewClient(endpointURL, all...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

// invoke performs one gateway call, resubmitting it on transient failures.
// A resubmitted mutation may have been applied by the earlier attempt; the
// ledger then answers with AlreadyExists, which surfaces as a duplicate.
func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	b := retry.WithMaxRetries(s.opts.Retries, retry.NewExponential(s.opts.RetryBase))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()

		err := s.conn.Invoke(callCtx, ledger.FullMethod(method), req, resp)
		if err != nil && transient(err) && ctx.Err() == nil {
			s.logger.Debug(ctx, "ledger call failed, retrying", "method", method, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	return s.mapError(method, err)
}

func (s *GRPCClient) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ledger.NewError(op, ledger.ErrTransport, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return ledger.NewError(op, ledger.ErrTransport, err)
	}
	cause := errors.New(st.Message())

	switch st.Code() {
	case codes.AlreadyExists:
		if op == ledger.MethodEnsureConfig || op == ledger.MethodEnsureProfile {
			return ledger.NewError(op, ledger.ErrAlreadyInitialized, cause)
		}
		return ledger.NewError(op, ledger.ErrDuplicateSubmission, cause)
	case codes.InvalidArgument, codes.OutOfRange:
		return ledger.NewError(op, ledger.ErrValidation, cause)
	case codes.FailedPrecondition:
		return ledger.NewError(op, ledger.ErrPreconditionFailed, cause)
	case codes.NotFound:
		return ledger.NewError(op, ledger.ErrNotFound, cause)
	case codes.Unauthenticated, codes.PermissionDenied:
		return ledger.NewError(op, ledger.ErrUnauthorized, cause)
	default:
		// Unavailable, DeadlineExceeded and anything the gateway could not
		// classify leave the outcome unknown.
		return ledger.NewError(op, ledger.ErrTransport, err)
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp := &ledger.PingResponse{}
	if err := s.invoke(ctx, ledger.MethodPing, &ledger.PingRequest{}, resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ledger.Errorf(ledger.MethodPing, ledger.ErrTransport, "gateway status %q", resp.Status)
	}
	return nil
}

func (s *GRPCClient) AccountExists(ctx context.Context, addr ledger.Address) (bool, error) {
	resp := &ledger.AccountExistsResponse{}
	if err := s.invoke(ctx, ledger.MethodAccountExists, &ledger.AccountExistsRequest{Address: addr}, resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

func (s *GRPCClient) submit(ctx context.Context, method string, req any) (ledger.TxRef, error) {
	resp := &ledger.TxResponse{}
	if err := s.invoke(ctx, method, req, resp); err != nil {
		return "", err
	}
	return resp.Tx, nil
}

func (s *GRPCClient) EnsureConfig(ctx context.Context, authority string) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodEnsureConfig, &ledger.EnsureConfigRequest{Authority: authority})
}

func (s *GRPCClient) EnsureProfile(ctx context.Context, owner string) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodEnsureProfile, &ledger.EnsureProfileRequest{Owner: owner})
}

func (s *GRPCClient) CreateFileRecord(ctx context.Context, p ledger.CreateFileParams) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodCreateFileRecord, &ledger.CreateFileRecordRequest{
		Owner:      p.Owner,
		Name:       p.Name,
		Size:       p.Size,
		Hash:       p.Hash[:],
		ChunkCount: p.ChunkCount,
		Timestamp:  ledger.Unix(p.Timestamp),
	})
}

func (s *GRPCClient) RegisterStorage(ctx context.Context, owner, name, storageID string, root models.Digest) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodRegisterStorage, &ledger.RegisterStorageRequest{
		Owner:      owner,
		Name:       name,
		StorageID:  storageID,
		MerkleRoot: root[:],
	})
}

func (s *GRPCClient) FinalizeFile(ctx context.Context, owner, name string) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodFinalizeFile, &ledger.FinalizeFileRequest{Owner: owner, Name: name})
}

func (s *GRPCClient) SetVisibility(ctx context.Context, owner, name string, public bool) (ledger.TxRef, error) {
	return s.submit(ctx, ledger.MethodSetVisibility, &ledger.SetVisibilityRequest{Owner: owner, Name: name, Public: public})
}

func (s *GRPCClient) ListFilesByOwner(ctx context.Context, owner string) ([]models.FileRecord, error) {
	resp := &ledger.ListFilesResponse{}
	if err := s.invoke(ctx, ledger.MethodListFilesByOwner, &ledger.ListFilesRequest{Owner: owner}, resp); err != nil {
		return nil, err
	}

	files := make([]models.FileRecord, 0, len(resp.Files))
	for _, m := range resp.Files {
		r, err := ledger.FileRecordFromMessage(m)
		if err != nil {
			return nil, ledger.NewError(ledger.MethodListFilesByOwner, ledger.ErrTransport, err)
		}
		files = append(files, r)
	}
	return files, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, owner string) (*models.UserProfile, error) {
	resp := &ledger.ProfileResponse{}
	if err := s.invoke(ctx, ledger.MethodGetProfile, &ledger.GetProfileRequest{Owner: owner}, resp); err != nil {
		return nil, err
	}
	return ledger.ProfileFromMessage(*resp), nil
}

func (s *GRPCClient) GetConfig(ctx context.Context) (*models.LedgerConfig, error) {
	resp := &ledger.ConfigResponse{}
	if err := s.invoke(ctx, ledger.MethodGetConfig, &ledger.GetConfigRequest{}, resp); err != nil {
		return nil, err
	}
	return ledger.ConfigFromMessage(*resp), nil
}
