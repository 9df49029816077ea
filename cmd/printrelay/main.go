// Command printrelay sends a stored print job to the local print agent
// without a browser. It takes a viewer URL or a job id:
//
//	printrelay 'http://relay:8000/view?id=2f0c...'
//	printrelay -relay http://relay:8000 2f0c...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/orrn/printbridge/internal/bridge"
	"github.com/orrn/printbridge/internal/config"
	"github.com/orrn/printbridge/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	relayURL := flag.String("relay", "http://localhost:8000", "relay base URL, used when a bare job id is given")
	agentURL := flag.String("agent", "", "local print agent URL (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <viewer url | job id>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *agentURL != "" {
		cfg.Bridge.AgentURL = *agentURL
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := relay(ctx, cfg.Bridge, *relayURL, flag.Arg(0), logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		switch {
		case errors.Is(err, bridge.ErrAgentUnreachable):
			fmt.Fprintf(os.Stderr, "Start the local print agent at %s, then run this command again.\n", cfg.Bridge.AgentURL)
			os.Exit(3)
		case errors.Is(err, bridge.ErrAgentRejected):
			os.Exit(4)
		default:
			os.Exit(1)
		}
	}
}

func relay(ctx context.Context, cfg config.BridgeConfig, relayURL, ref string, logger *zap.Logger) error {
	baseURL, id, err := bridge.ParseJobRef(ref)
	if err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = relayURL
	}

	msg, err := bridge.FetchMessage(ctx, &http.Client{Timeout: 15 * time.Second}, baseURL, id)
	if err != nil {
		return err
	}
	logger.Info("fetched print job",
		zap.String("job_id", msg.JobID),
		zap.Int("directives", len(msg.Directives)))

	client := bridge.NewClient(bridge.ClientConfig{
		AgentURL:       cfg.AgentURL,
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		AckTimeout:     cfg.AckTimeout,
	}, logger)

	ack, err := client.Send(ctx, msg)
	if err != nil {
		return err
	}

	logger.Info("print job accepted by local agent",
		zap.String("job_id", ack.JobID),
		zap.String("message", ack.Message))
	fmt.Printf("Job %s sent to %s: %s\n", ack.JobID, cfg.AgentURL, ack.Status)
	return nil
}
