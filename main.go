package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/eventcatalog/catalog-engine/internal/config"
	"github.com/eventcatalog/catalog-engine/internal/engine"
	"github.com/eventcatalog/catalog-engine/internal/graph"
	"github.com/eventcatalog/catalog-engine/internal/publish"
	"github.com/eventcatalog/catalog-engine/internal/watch"
)

var setupLog = log.Log.WithName("setup")

func main() {
	var (
		projectDir     string
		focus          string
		mode           string
		channelMode    string
		output         string
		metricsAddr    string
		renderAll      bool
		renderChannels bool
		watchCatalog   bool
	)

	flag.StringVar(&projectDir, "project-dir", "", "Catalog root. Defaults to PROJECT_DIR or the working directory.")
	flag.StringVar(&focus, "focus", "", "Resource to centre the graph on, as role:id[@version].")
	flag.StringVar(&mode, "mode", string(graph.ModeSimple), "Node detail, simple or full.")
	flag.StringVar(&channelMode, "channel-mode", "", "Channel rendering, single or flat. Defaults to the catalog config.")
	flag.StringVar(&output, "output", "-", "File the graph JSON is written to, - for stdout.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to in watch mode. 0 disables it.")
	flag.BoolVar(&renderAll, "render-all-edges", false, "Draw both handles on every message node.")
	flag.BoolVar(&renderChannels, "render-channels", false, "Route messages through their channels.")
	flag.BoolVar(&watchCatalog, "watch", false, "Rebuild the graph whenever the catalog changes.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	f, err := graph.ParseFocus(focus)
	if err != nil {
		setupLog.Error(err, "invalid focus")
		os.Exit(1)
	}
	if mode != string(graph.ModeSimple) && mode != string(graph.ModeFull) {
		setupLog.Error(fmt.Errorf("unknown mode %q", mode), "invalid mode")
		os.Exit(1)
	}

	cfg, err := config.Load(projectDir)
	if err != nil {
		setupLog.Error(err, "unable to load config")
		os.Exit(1)
	}
	eng := engine.FromConfig(cfg)

	buildOpts := graph.Options{
		Mode:           graph.Mode(mode),
		RenderAllEdges: renderAll,
		RenderChannels: renderChannels,
		ChannelMode:    graph.ChannelMode(channelMode),
	}
	render := func(ctx context.Context) (graph.Graph, error) {
		g, err := eng.Graph(ctx, f.Role, f.ID, f.Version, buildOpts)
		if err != nil {
			return g, err
		}
		return g, writeGraph(output, g)
	}

	ctx := log.IntoContext(signals.SetupSignalHandler(), log.Log)
	if _, err := render(ctx); err != nil {
		setupLog.Error(err, "unable to build graph", "focus", f.String())
		os.Exit(1)
	}
	if !watchCatalog {
		return
	}

	if metricsAddr != "0" {
		srv := metricsServer(metricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				setupLog.Error(err, "metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	notifier, err := newNotifier(ctx, cfg.Events)
	if err != nil {
		setupLog.Error(err, "unable to connect to the event bus")
		os.Exit(1)
	}
	defer notifier.Close()

	w := &watch.Watcher{
		Root: cfg.ProjectDir,
		OnChange: func(ctx context.Context, paths []string) {
			logger := log.FromContext(ctx)
			logger.Info("catalog changed", "files", len(paths))
			eng.Reset()
			if c, err := eng.Catalog(ctx); err == nil {
				if err := notifier.CatalogChanged(ctx, publish.CatalogChanged{Paths: paths, Unresolved: c.Diagnostics.Len(), At: time.Now()}); err != nil {
					logger.Error(err, "unable to publish catalog change")
				}
			}
			g, err := render(ctx)
			if err != nil {
				logger.Error(err, "unable to rebuild graph", "focus", f.String())
				return
			}
			if err := notifier.GraphUpdated(ctx, publish.GraphUpdated{Focus: f.String(), Nodes: len(g.Nodes), Edges: len(g.Edges), At: time.Now()}); err != nil {
				logger.Error(err, "unable to publish graph update")
			}
		},
	}

	setupLog.Info("watching catalog", "dir", cfg.ProjectDir, "focus", f.String())
	if err := w.Start(ctx); err != nil {
		setupLog.Error(err, "problem watching catalog")
		os.Exit(1)
	}
}

// newNotifier returns a nil notifier, which publishes nothing, when no
// event bus is configured.
func newNotifier(ctx context.Context, cfg config.EventsConfig) (*publish.Notifier, error) {
	if cfg.NATSURL == "" {
		return nil, nil
	}
	pub, err := publish.NewNATSPublisher(ctx, cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	return &publish.Notifier{Publisher: pub, Prefix: cfg.Subject}, nil
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", &healthz.Handler{Checks: map[string]healthz.Checker{"ping": healthz.Ping}})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func writeGraph(path string, g graph.Graph) error {
	var out io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		out = file
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
