package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dd0wney/archval/pkg/api"
	"github.com/dd0wney/archval/pkg/auth"
	"github.com/dd0wney/archval/pkg/catalog"
	"github.com/dd0wney/archval/pkg/checker"
	"github.com/dd0wney/archval/pkg/cypher"
	"github.com/dd0wney/archval/pkg/logging"
	"github.com/dd0wney/archval/pkg/metrics"
	"github.com/dd0wney/archval/pkg/server"
	"github.com/dd0wney/archval/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "Listen port (overrides config)")
	rulesDir := flag.String("rules", "", "Directory of *.cypher rule queries (overrides config)")
	catalogDir := flag.String("catalogs", "", "Directory of catalog CSV files (overrides config)")
	flag.Parse()

	log := logging.Default()

	cfg, err := api.LoadConfig(*configPath)
	if err != nil {
		log.Error("Failed to load configuration", logging.Error(err))
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *rulesDir != "" {
		cfg.RulesDir = *rulesDir
	}
	if *catalogDir != "" {
		cfg.CatalogDir = *catalogDir
	}
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", logging.Error(err))
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.CatalogDir)
	if err != nil {
		log.Error("Failed to load catalogs", logging.Error(err))
		os.Exit(1)
	}

	client, err := store.NewClient(cfg.Store, log)
	if err != nil {
		log.Error("Failed to build store client", logging.Error(err))
		os.Exit(1)
	}
	defer client.Close()

	// A down store is not fatal at boot: runs report the connection failure
	// and the service stays up for conversion endpoints.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := client.VerifyConnectivity(ctx); err != nil {
		log.Warn("Graph store not reachable at startup", logging.Error(err))
	}
	cancel()

	style := cypher.Style(cfg.FormatStyle)
	registry := checker.NewRegistry()
	registry.Register(checker.NewTriggerChecker(client, style, log))
	registry.Register(checker.NewRuleScanChecker(client, cfg.RulesDir, style, log))

	var jwtManager *auth.JWTManager
	if cfg.AuthSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.AuthSecret, 24*time.Hour)
		if err != nil {
			log.Error("Failed to configure auth", logging.Error(err))
			os.Exit(1)
		}
		log.Info("Bearer-token auth enabled")
	}

	metricsReg := metrics.DefaultRegistry()
	apiServer := api.NewServer(cfg, registry, client, cat, metricsReg, jwtManager, log)

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metricsReg.UpdateSystemMetrics(startTime)
		}
	}()

	gs := server.NewGracefulServer(cfg.Addr(), apiServer.Handler(), log)
	log.Info("Validation service ready",
		logging.String("addr", cfg.Addr()),
		logging.Store(cfg.Store.URI),
		logging.String("rules_dir", cfg.RulesDir))
	if err := gs.Start(); err != nil {
		log.Error("Server failed", logging.Error(err))
		os.Exit(1)
	}
}
