package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/orchestrator"
	"github.com/faultmesh/faultmesh/internal/topology"
)

var (
	topologyPath string
	callTimeout  time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "chaosctl",
	Short: "Fault injection and telemetry toolkit",
	Long:  "chaosctl injects faults into a running service topology, generates synthetic traffic, and collects telemetry for export.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&topologyPath, "topology", "", "Path to topology YAML (defaults to the local four-service stack)")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(injectCmd)
	rootCmd.AddCommand(cascadeCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(trafficCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(collectCmd)
}

func loadTopology() (*topology.Topology, error) {
	if topologyPath == "" {
		return topology.Default(), nil
	}
	return topology.Load(topologyPath)
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func newOrchestrator(cfg orchestrator.Config) (*orchestrator.Orchestrator, error) {
	topo, err := loadTopology()
	if err != nil {
		return nil, err
	}
	cfg.Topology = topo
	cfg.Client = orchestrator.NewClient(callTimeout)
	cfg.Logger = newLogger()
	return orchestrator.New(cfg), nil
}

// printJSON renders a result on stdout for human and script consumption.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
