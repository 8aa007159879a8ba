package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "liveresults",
	Short: "Live speed skating results relay",
	Long: `liveresults polls a timing source, ranks every distance and streams
incremental updates to WebSocket viewers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(processCmd)
}

// setupLogger installs a JSON slog handler on stdout as the default logger
// and returns the level so it can be changed at runtime.
func setupLogger(level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv})))
	return lv
}
