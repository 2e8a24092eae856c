package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the control service. Its
// messages are protobuf well-known types, so no generated code is needed.
const ServiceName = "facegate.v1.Gate"

// Full method names as they appear on the wire.
const (
	EnrollMethod       = "/" + ServiceName + "/Enroll"
	AuthenticateMethod = "/" + ServiceName + "/Authenticate"
	PingMethod         = "/" + ServiceName + "/Ping"
)

// GateServer is the server side of facegate.v1.Gate.
//
//	Enroll(Int64Value identity)  -> Struct{identity, digest}
//	Authenticate(Empty)          -> Struct{passed, identity, bound}
//	Ping(Empty)                  -> Empty
type GateServer interface {
	Enroll(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Authenticate(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// RegisterGateServer registers srv on s.
func RegisterGateServer(s grpc.ServiceRegistrar, srv GateServer) {
	s.RegisterService(&gateServiceDesc, srv)
}

var gateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Enroll", Handler: enrollHandler},
		{MethodName: "Authenticate", Handler: authenticateHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func enrollHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServer).Enroll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EnrollMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GateServer).Enroll(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AuthenticateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GateServer).Authenticate(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GateServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// GateClient is the client side of facegate.v1.Gate.
type GateClient interface {
	Enroll(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Authenticate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type gateClient struct {
	cc grpc.ClientConnInterface
}

func NewGateClient(cc grpc.ClientConnInterface) GateClient {
	return &gateClient{cc: cc}
}

func (c *gateClient) Enroll(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EnrollMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gateClient) Authenticate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AuthenticateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gateClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, PingMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
