package main

import (
	"context"
	"flag"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/eventcatalog/catalog-engine/internal/config"
	"github.com/eventcatalog/catalog-engine/internal/engine"
	"github.com/eventcatalog/catalog-engine/internal/rpc"
	"github.com/eventcatalog/catalog-engine/internal/watch"
)

func main() {
	var listenAddr, projectDir string
	var watchCatalog bool
	flag.StringVar(&listenAddr, "listen", ":50051", "address to listen on")
	flag.StringVar(&projectDir, "project-dir", "", "Catalog root. Defaults to PROJECT_DIR or the working directory.")
	flag.BoolVar(&watchCatalog, "watch", false, "Drop cached collections whenever the catalog changes.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	setupLog := log.Log.WithName("setup")

	cfg, err := config.Load(projectDir)
	if err != nil {
		setupLog.Error(err, "unable to load config")
		os.Exit(1)
	}
	eng := engine.FromConfig(cfg)

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		setupLog.Error(err, "unable to listen", "address", listenAddr)
		os.Exit(1)
	}

	ctx := log.IntoContext(signals.SetupSignalHandler(), log.Log)
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor(ctx)))
	rpc.RegisterGraphServer(grpcServer, &rpc.Server{Engine: eng})
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	if watchCatalog {
		w := &watch.Watcher{
			Root: cfg.ProjectDir,
			OnChange: func(ctx context.Context, paths []string) {
				log.FromContext(ctx).Info("catalog changed, dropping cache", "files", len(paths))
				eng.Reset()
			},
		}
		go func() {
			if err := w.Start(ctx); err != nil {
				setupLog.Error(err, "problem watching catalog")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		healthSrv.Shutdown()
		grpcServer.GracefulStop()
	}()

	setupLog.Info("serving graphs", "address", lis.Addr().String(), "dir", cfg.ProjectDir)
	if err := grpcServer.Serve(lis); err != nil {
		setupLog.Error(err, "grpc serve")
		os.Exit(1)
	}
}
