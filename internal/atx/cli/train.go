package cli

import (
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ehsaniara/annotrain/internal/atx/client"
	"github.com/ehsaniara/annotrain/internal/atx/ui"
)

func newTrainCmd() *cobra.Command {
	var req client.TrainRequest

	cmd := &cobra.Command{
		Use:   "train <owner>/<task>",
		Short: "Prepare the dataset of a task and queue a training job",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			owner, task, err := parseTask(args[0])
			if err != nil {
				return err
			}

			spinner := ui.NewSpinner("Preparing dataset of " + args[0])
			resp, err := apiClient.Train(cmd.Context(), owner, task, req)
			if err != nil {
				spinner.Fail()
				return err
			}
			spinner.Success("Queued job " + color.HiCyanString(resp.JobID))

			if !lo.Must(cmd.Flags().GetBool("follow")) {
				return nil
			}
			return followLog(cmd, resp.JobID, 0)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Model, "model", "m", "", "base weights file name on the server (required)")
	flags.IntVar(&req.Epochs, "epochs", 0, "number of epochs (server default when 0)")
	flags.IntVar(&req.ImgSize, "imgsz", 0, "training image size (server default when 0)")
	flags.IntVar(&req.Batch, "batch", 0, "batch size, -1 for auto (server default when 0)")
	flags.StringVar(&req.Device, "device", "", "training device, e.g. 0 or cpu")
	flags.Float64Var(&req.TrainRatio, "train-ratio", 0, "share of images used for training")
	flags.StringVar(&req.ExportFormat, "export-format", "", "export the weights to this format after training")
	flags.IntVar(&req.ExportOpset, "export-opset", 0, "ONNX opset of the export")
	flags.BoolP("follow", "f", false, "follow the job log until it ends")
	lo.Must0(cmd.MarkFlagRequired("model"))

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <owner>/<task>",
		Short: "Show whether a job is active for a task",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			owner, task, err := parseTask(args[0])
			if err != nil {
				return err
			}
			st, err := apiClient.Status(cmd.Context(), owner, task)
			if err != nil {
				return err
			}
			if !st.IsRunning() {
				cmd.Println(color.HiGreenString("idle"))
				return nil
			}
			cmd.Printf("%s  job %s  %s\n", color.HiYellowString("running"), st.JobID, ui.PhaseColor(st.Phase))
			return nil
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <job-id>",
		Short: "Stop a queued or running job",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := apiClient.Stop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.PrintErrln(color.HiGreenString("Job %s: %s", args[0], resp.Message))
			return nil
		},
	}
}
