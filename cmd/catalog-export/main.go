package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/eventcatalog/catalog-engine/internal/config"
	"github.com/eventcatalog/catalog-engine/internal/engine"
)

type export struct {
	Services     any      `json:"services,omitempty"`
	Messages     any      `json:"messages,omitempty"`
	Domains      any      `json:"domains,omitempty"`
	DataProducts any      `json:"dataProducts,omitempty"`
	Channels     any      `json:"channels,omitempty"`
	Flows        any      `json:"flows,omitempty"`
	Unresolved   []string `json:"unresolved"`
}

func main() {
	var projectDir string
	var strict bool
	flag.StringVar(&projectDir, "project-dir", "", "Catalog root. Defaults to PROJECT_DIR or the working directory.")
	flag.BoolVar(&strict, "strict", false, "Exit non-zero when any reference is unresolved.")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	log.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	logger := log.Log.WithName("export")

	cfg, err := config.Load(projectDir)
	if err != nil {
		logger.Error(err, "unable to load config")
		os.Exit(1)
	}

	ctx := log.IntoContext(signals.SetupSignalHandler(), log.Log)
	c, err := engine.FromConfig(cfg).Catalog(ctx)
	if err != nil {
		logger.Error(err, "unable to enrich catalog", "dir", cfg.ProjectDir)
		os.Exit(1)
	}

	out := export{
		Services:     c.Services,
		Messages:     c.Messages,
		Domains:      c.Domains,
		DataProducts: c.DataProducts,
		Channels:     c.Channels,
		Flows:        c.Flows,
		Unresolved:   []string{},
	}
	for _, u := range c.Diagnostics.Unresolved {
		out.Unresolved = append(out.Unresolved, u.String())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error(err, "unable to write export")
		os.Exit(1)
	}
	if strict && len(out.Unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "%d unresolved references\n", len(out.Unresolved))
		os.Exit(2)
	}
}
