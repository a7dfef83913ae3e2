package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jooksuklubid/runclubs/cmd/server"
	"github.com/jooksuklubid/runclubs/internal/adapters/config"
	setupHTTP "github.com/jooksuklubid/runclubs/internal/adapters/controller/http/setup"
	"github.com/jooksuklubid/runclubs/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	retentionOnce := flag.Bool("retention-once", false, "remove expired events once and exit")
	flag.Parse()

	if err := run(*configPath, *retentionOnce); err != nil {
		log.Printf("runclubs: %v", err)
		os.Exit(1)
	}
}

func run(configPath string, retentionOnce bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Get(ctx, configPath)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer func() {
		if err := cfg.Close(); err != nil {
			logger.Log.Errorf("Failed to close connections: %v", err)
		}
	}()

	s, err := server.New(cfg)
	if err != nil {
		return err
	}

	if retentionOnce {
		deleted, err := s.Retention.Run(ctx)
		if err != nil {
			return err
		}
		logger.Log.Infof("Retention finished, %d events removed", deleted)
		return nil
	}

	setupHTTP.Setup(s)
	return s.Start(ctx)
}
