// Package rpc serves focus graphs over gRPC.
//
// Requests and responses travel as google.protobuf.Struct values holding the
// JSON form of Request and graph.Graph, so no generated stubs are needed.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "eventcatalog.graph.v1.GraphService"

	buildGraphMethod = "/" + ServiceName + "/BuildGraph"
)

// Request asks for the graph centred on Focus ("role:id[@version]").
type Request struct {
	Focus          string `json:"focus"`
	Mode           string `json:"mode,omitempty"`
	RenderAllEdges bool   `json:"renderAllEdges,omitempty"`
	RenderChannels bool   `json:"renderChannels,omitempty"`
	ChannelMode    string `json:"channelMode,omitempty"`
}

// GraphServer is the server API for GraphService.
type GraphServer interface {
	BuildGraph(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GraphServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BuildGraph", Handler: buildGraphHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "eventcatalog/graph/v1/graph.proto",
}

func RegisterGraphServer(s grpc.ServiceRegistrar, srv GraphServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func buildGraphHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GraphServer).BuildGraph(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: buildGraphMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GraphServer).BuildGraph(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: encode: %w", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("rpc: encode: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("rpc: decode: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: decode: %w", err)
	}
	return nil
}
