package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ehsaniara/annotrain/internal/atx/ui"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <job-id>",
		Short: "Replay and follow the log of a job",
		Long: `Replay and follow the log of a job until it ends.

Every line has a cursor; pass the last one seen with --cursor to resume
without duplicates.`,
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return followLog(cmd, args[0], lo.Must(cmd.Flags().GetInt64("cursor")))
		},
	}
	cmd.Flags().Int64("cursor", 0, "resume after this cursor")
	return cmd
}

// followLog prints the job log and fails when the job did not succeed.
func followLog(cmd *cobra.Command, jobID string, cursor int64) error {
	var failure string
	err := apiClient.Stream(cmd.Context(), jobID, cursor, func(_ int64, line string) error {
		if kind, payload, ok := domain.ParseTerminal(line); ok && kind == domain.SentinelError {
			failure = payload
		}
		if out := ui.LogLine(line); out != "" {
			cmd.Println(out)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failure != "" {
		return fmt.Errorf("job %s: %s", jobID, failure)
	}
	return nil
}
