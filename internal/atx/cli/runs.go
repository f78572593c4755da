package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ehsaniara/annotrain/internal/atx/ui"
)

func newRunsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <owner>/<task>",
		Short: "List the training runs of a task, newest first",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			owner, task, err := parseTask(args[0])
			if err != nil {
				return err
			}
			runs, err := apiClient.Runs(cmd.Context(), owner, task)
			if err != nil {
				return err
			}
			if v.GetBool(flagJSON) {
				return printJSON(cmd, runs)
			}
			if len(runs) == 0 {
				cmd.Println("No runs found")
				return nil
			}
			for _, r := range runs {
				weights := color.HiRedString("no weights")
				if r.HasWeights {
					weights = color.HiGreenString(r.Weights)
				}
				cmd.Printf("%s  %-40s  %s\n", r.ModTime().Local().Format(time.DateTime), color.HiCyanString(r.Name), weights)
			}
			return nil
		},
	}
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <owner>/<task> <run>",
		Short: "Download a run directory as a .tar.zst archive",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			owner, task, err := parseTask(args[0])
			if err != nil {
				return err
			}
			run := args[1]

			dir := lo.Must(cmd.Flags().GetString("output"))
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			file := filepath.Join(dir, fmt.Sprintf("%s_%s_results.tar.zst", task, run))

			spinner := ui.NewSpinner("Downloading " + run)
			size, err := downloadTo(cmd, owner, task, run, file)
			if err != nil {
				spinner.Fail()
				return err
			}
			spinner.Success(fmt.Sprintf("Downloaded %s (%d bytes)", file, size))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", ".", "directory the archive is written to")
	return cmd
}

func downloadTo(cmd *cobra.Command, owner, task, run, file string) (int64, error) {
	f, err := os.Create(file)
	if err != nil {
		return 0, err
	}
	size, err := apiClient.Download(cmd.Context(), owner, task, run, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(file)
		return 0, err
	}
	return size, nil
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the base weights available on the server",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := apiClient.Models(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range models {
				cmd.Println(m)
			}
			return nil
		},
	}
}
