package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faultmesh/faultmesh/internal/collector"
	"github.com/faultmesh/faultmesh/internal/resilience"
)

var collectOut string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect telemetry and export it as CSV",
	Long:  "collect pulls metrics, logs and traces from the topology and writes metrics.csv, logs.csv and traces.csv to the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, err := loadTopology()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(collectOut, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		c := collector.New(collector.Config{
			Topology: topo,
			Client:   resilience.NewClient(resilience.NoRetryClientConfig("collector", callTimeout)),
			Logger:   newLogger(),
		})

		ctx := cmd.Context()
		metrics := c.CollectMetrics(ctx)
		logs := c.CollectLogs(ctx)
		traces := c.CollectTraces(ctx)

		if err := writeFile(filepath.Join(collectOut, "metrics.csv"), func(f *os.File) error {
			return collector.WriteMetricsCSV(f, metrics)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(collectOut, "logs.csv"), func(f *os.File) error {
			return collector.WriteLogsCSV(f, logs)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(collectOut, "traces.csv"), func(f *os.File) error {
			return collector.WriteTracesCSV(f, traces)
		}); err != nil {
			return err
		}

		fmt.Printf("wrote %d metric, %d log and %d trace records to %s\n",
			len(metrics), len(logs), len(traces), collectOut)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectOut, "out", "telemetry", "Output directory for CSV files")
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
