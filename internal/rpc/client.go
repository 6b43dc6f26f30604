package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/eventcatalog/catalog-engine/internal/graph"
)

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) BuildGraph(ctx context.Context, req Request, opts ...grpc.CallOption) (graph.Graph, error) {
	in, err := toStruct(req)
	if err != nil {
		return graph.Graph{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, buildGraphMethod, in, out, opts...); err != nil {
		return graph.Graph{}, err
	}
	var g graph.Graph
	if err := fromStruct(out, &g); err != nil {
		return graph.Graph{}, err
	}
	return g, nil
}
