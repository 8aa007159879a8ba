package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/liveresults/liveresults/internal/processor"
	"github.com/liveresults/liveresults/internal/results"
)

var processFlags struct {
	previous string
	compact  bool
}

var processCmd = &cobra.Command{
	Use:   "process <payload.json>",
	Short: "Process one raw payload and print the resulting state",
	Long: `Reads a raw timing payload, runs it through the processor and writes the
processed state as JSON to stdout. With --previous, position changes are
computed against that earlier payload.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(slog.LevelWarn)

		var prev *results.State
		if processFlags.previous != "" {
			raw, err := readPayload(processFlags.previous)
			if err != nil {
				return err
			}
			prev = processor.Process(*raw)
		}

		raw, err := readPayload(args[0])
		if err != nil {
			return err
		}
		st := processor.ProcessWithPrevious(*raw, prev)

		enc := json.NewEncoder(cmd.OutOrStdout())
		if !processFlags.compact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(st)
	},
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processFlags.previous, "previous", "", "earlier payload to compute position changes against")
	f.BoolVar(&processFlags.compact, "compact", false, "write JSON without indentation")
}

func readPayload(path string) (*processor.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()
	return processor.Decode(f)
}
