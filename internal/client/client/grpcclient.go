package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/facegate/internal/common"
	gs "github.com/dmitrijs2005/facegate/internal/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// EnrollReply is the outcome of a remote enrollment.
type EnrollReply struct {
	Identity int64
	Digest   string
}

// AuthReply is the outcome of a remote authentication.
type AuthReply struct {
	Passed   bool
	Identity int64
	Bound    bool
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      gs.GateClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

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
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a client for endpointURL. The connection is
// established lazily on the first call. extra options are appended after
// the defaults.
func NewGRPCClient(endpointURL, accessToken string, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = gs.NewGateClient(conn)
	return c, nil
}

func (s *GRPCClient) Enroll(ctx context.Context, identity int64) (EnrollReply, error) {
	resp, err := s.client.Enroll(ctx, wrapperspb.Int64(identity))
	if err != nil {
		return EnrollReply{}, s.mapError(err)
	}

	fields := resp.GetFields()
	return EnrollReply{
		Identity: int64(fields["identity"].GetNumberValue()),
		Digest:   fields["digest"].GetStringValue(),
	}, nil
}

func (s *GRPCClient) Authenticate(ctx context.Context) (AuthReply, error) {
	resp, err := s.client.Authenticate(ctx, &emptypb.Empty{})
	if err != nil {
		return AuthReply{}, s.mapError(err)
	}
	return authReply(resp), nil
}

func authReply(resp *structpb.Struct) AuthReply {
	fields := resp.GetFields()
	return AuthReply{
		Passed:   fields["passed"].GetBoolValue(),
		Identity: int64(fields["identity"].GetNumberValue()),
		Bound:    fields["bound"].GetBoolValue(),
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx, &emptypb.Empty{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.DeadlineExceeded:
		return ErrTimeout
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
