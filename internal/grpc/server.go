// Package grpc exposes the gate workflows as the facegate.v1.Gate control
// service, so a remote operator can trigger enrollment and authentication.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/facegate/internal/logging"
	"github.com/dmitrijs2005/facegate/internal/models"
	"github.com/dmitrijs2005/facegate/internal/services"
	"google.golang.org/grpc"
)

// Gate is the workflow surface the control service drives.
type Gate interface {
	Enroll(ctx context.Context, id models.IdentityNumber) (services.EnrollResult, error)
	Authenticate(ctx context.Context) (services.AuthResult, error)
}

var _ GateServer = (*GRPCServer)(nil)

type GRPCServer struct {
	address   string
	gate      Gate
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(address string, l logging.Logger, gate Gate, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   address,
		gate:      gate,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	RegisterGateServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
