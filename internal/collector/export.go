package collector

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Export headers are fixed; downstream notebooks key on these names.
var (
	metricsHeader = []string{"timestamp", "service", "cpu", "memory", "latency", "status"}
	logsHeader    = []string{"timestamp", "service", "level", "message"}
	tracesHeader  = []string{"traceId", "spanCount"}
)

// WriteMetricsCSV writes metric records as comma-delimited rows under
// the fixed header. Every value is quoted; embedded quotes are doubled.
func WriteMetricsCSV(w io.Writer, records []MetricRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Timestamp,
			r.Service,
			strconv.FormatFloat(r.CPU, 'f', 1, 64),
			strconv.FormatFloat(r.Memory, 'f', 1, 64),
			strconv.Itoa(r.Latency),
			r.Status,
		})
	}
	return writeDelimited(w, metricsHeader, rows)
}

// WriteLogsCSV writes log records under the fixed header.
func WriteLogsCSV(w io.Writer, records []LogRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Timestamp, r.Service, r.Level, r.Message})
	}
	return writeDelimited(w, logsHeader, rows)
}

// WriteTracesCSV writes trace summaries under the fixed header.
func WriteTracesCSV(w io.Writer, records []TraceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.TraceID, strconv.Itoa(r.SpanCount)})
	}
	return writeDelimited(w, tracesHeader, rows)
}

// writeDelimited emits a plain header line followed by one row per
// record with every field quoted. encoding/csv only quotes on demand,
// and the export contract requires quoting unconditionally.
func writeDelimited(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, strings.Join(header, ",")+"\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		quoted := make([]string, len(row))
		for i, field := range row {
			quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\n"); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}
