package cli

import (
	"github.com/absmach/fedlearn/checkpoint"
	"github.com/absmach/fedlearn/pkg/fl"
	"github.com/spf13/cobra"
)

var showParams = false

type checkpointView struct {
	checkpoint.Summary
	Layout     fl.Layout        `json:"layout"`
	Parameters *fl.ParameterSet `json:"parameters,omitempty"`
}

func NewCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints [list|show]",
		Short: "Inspect saved checkpoints",
		Long:  `List the checkpoints of a client directory or show a single checkpoint.`,
	}

	listCmd := &cobra.Command{
		Use:   "list <dir>",
		Short: "List checkpoints",
		Long:  `List the checkpoints in a directory ordered by round.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			summaries, err := checkpoint.List(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, summaries)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Show checkpoint",
		Long:  `Show the round, metrics and parameter layout stored in a checkpoint file.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			rec, err := checkpoint.Load(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, viewOf(args[0], rec, showParams))
		},
	}

	showCmd.Flags().BoolVarP(&showParams, "params", "p", showParams, "Include parameter values")

	cmd.AddCommand(listCmd, showCmd)

	return cmd
}

func viewOf(path string, rec checkpoint.Record, withParams bool) checkpointView {
	v := checkpointView{
		Summary: rec.Summary(path),
		Layout:  rec.Parameters.Layout,
	}
	if withParams {
		v.Parameters = &rec.Parameters
	}

	return v
}
