package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/eventcatalog/catalog-engine/internal/engine"
	"github.com/eventcatalog/catalog-engine/internal/graph"
)

// Server answers BuildGraph from an engine.
type Server struct {
	Engine *engine.Engine
}

func (s *Server) BuildGraph(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "request is nil")
	}
	var req Request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	f, err := graph.ParseFocus(req.Focus)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	switch graph.Mode(req.Mode) {
	case "", graph.ModeSimple, graph.ModeFull:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown mode %q", req.Mode)
	}
	switch graph.ChannelMode(req.ChannelMode) {
	case "", graph.ChannelSingle, graph.ChannelFlat:
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown channel mode %q", req.ChannelMode)
	}

	g, err := s.Engine.Graph(ctx, f.Role, f.ID, f.Version, graph.Options{
		Mode:           graph.Mode(req.Mode),
		RenderAllEdges: req.RenderAllEdges,
		RenderChannels: req.RenderChannels,
		ChannelMode:    graph.ChannelMode(req.ChannelMode),
	})
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return nil, status.Error(codes.NotFound, err.Error())
	case err != nil:
		log.FromContext(ctx).Error(err, "unable to build graph", "focus", f.String())
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(g)
}

// LoggingInterceptor puts a logger named after the called method into the
// request context.
func LoggingInterceptor(ctx context.Context) grpc.UnaryServerInterceptor {
	base := log.FromContext(ctx).WithName("rpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		logger := base.WithValues("method", info.FullMethod)
		resp, err := handler(log.IntoContext(ctx, logger), req)
		logger.V(1).Info("handled", "code", status.Code(err).String())
		return resp, err
	}
}
