package cli

import (
	"encoding/json"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ehsaniara/annotrain/internal/atx/client"
	"github.com/ehsaniara/annotrain/internal/atx/ui"
)

func newJobsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs [job-id]",
		Short: "List jobs, or show one job",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			var jobs []client.Job
			if len(args) == 1 {
				j, err := apiClient.Job(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				jobs = []client.Job{*j}
			} else {
				var err error
				if jobs, err = apiClient.Jobs(cmd.Context()); err != nil {
					return err
				}
			}

			if v.GetBool(flagJSON) {
				return printJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				cmd.Println("No jobs found")
				return nil
			}
			for _, j := range jobs {
				duration := (time.Duration(j.DurationSeconds * float64(time.Second))).Truncate(time.Second)
				cmd.Printf("%s  %-36s  %-24s  %-22s  %8s  %s\n",
					j.CreatedAt.Local().Format(time.DateTime), j.ID, j.TaskKey, ui.PhaseColor(j.Phase), duration,
					jobDetail(j))
			}
			return nil
		},
	}
}

func jobDetail(j client.Job) string {
	switch {
	case j.Artifact != "":
		return color.HiGreenString(j.Artifact)
	case j.Message != "":
		return j.Message
	}
	return ""
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
