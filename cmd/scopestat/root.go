package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/scopemem"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose  bool
	jsonOut  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "scopestat",
	Short: "Exercise scoped allocators with a synthetic capture",
	Long: `scopestat replays a synthetic packet capture through the global, file
and packet scopes of scopemem, using every container on the way, and reports
allocator statistics.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log scope transitions at this level (debug, info, warn, error)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the logger selected by --log-level.
func newLogger(w io.Writer) (*scopemem.Logger, error) {
	if logLevel == "" {
		return scopemem.NoopLogger(), nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return scopemem.NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(w io.Writer, format string, args ...any) {
	if verbose {
		fmt.Fprintf(w, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
