package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/eventcatalog/catalog-engine/internal/rpc"
)

func main() {
	var target string
	var req rpc.Request
	flag.StringVar(&target, "target", "127.0.0.1:50051", "gRPC server address")
	flag.StringVar(&req.Focus, "focus", "", "Resource to centre the graph on, as role:id[@version].")
	flag.StringVar(&req.Mode, "mode", "", "Node detail, simple or full.")
	flag.BoolVar(&req.RenderChannels, "render-channels", false, "Route messages through their channels.")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", target, err)
		os.Exit(1)
	}
	defer conn.Close()

	g, err := rpc.NewClient(conn).BuildGraph(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "BuildGraph error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("BuildGraph ok: nodes=%d edges=%d\n", len(g.Nodes), len(g.Edges))
	for _, e := range g.Edges {
		fmt.Printf("  %s -> %s %q\n", e.Source, e.Target, e.Label)
	}
}
