package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/facegate/internal/common"
	"github.com/dmitrijs2005/facegate/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Enroll(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "identity must be positive")
	}

	s.logger.Info(ctx, "remote enrollment", "operator", operatorFromContext(ctx), "identity", id)

	res, err := s.gate.Enroll(ctx, models.IdentityNumber(id))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return structpb.NewStruct(map[string]any{
		"identity": int64(res.Identity),
		"digest":   res.Hash,
	})
}

func (s *GRPCServer) Authenticate(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.logger.Info(ctx, "remote authentication", "operator", operatorFromContext(ctx))

	res, err := s.gate.Authenticate(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return structpb.NewStruct(map[string]any{
		"passed":   res.Passed,
		"identity": int64(res.Identity),
		"bound":    res.Bound,
	})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrBusy):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, common.ErrTransportClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, common.ErrInvalidIdentity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAcquireTimeout), errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		s.logger.Error(ctx, "workflow failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
