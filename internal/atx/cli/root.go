// Package cli implements the atx command line client.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ehsaniara/annotrain/internal/atx/client"
	"github.com/ehsaniara/annotrain/internal/trainer/domain"
)

const (
	flagServer       = "server"
	flagUser         = "user"
	flagPassword     = "password"
	flagHealthRemote = "health-remote"
	flagJSON         = "json"
)

var apiClient *client.Client

// NewRootCmd builds the atx command tree. Persistent flags can also be set
// through ATX_* environment variables, e.g. ATX_SERVER or ATX_PASSWORD.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "atx",
		Short: "atx - client for the annotrain training server",
		Long: `atx queues YOLO training jobs on an annotrain server, follows their logs
and downloads the resulting runs.

Tasks are addressed as <owner>/<task>, jobs by the id returned by "atx train".`,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			server := v.GetString(flagServer)
			if server == "" {
				return fmt.Errorf("no server configured, use --server or ATX_SERVER")
			}
			apiClient = client.New(server, v.GetString(flagUser), v.GetString(flagPassword))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagServer, "http://127.0.0.1:8080", "annotrain server URL")
	flags.StringP(flagUser, "u", "", "username for basic authentication")
	flags.String(flagPassword, "", "password for basic authentication")
	flags.String(flagHealthRemote, "127.0.0.1:50051", "gRPC health endpoint of the server")
	flags.Bool(flagJSON, false, "output in JSON format")

	bindFlags(v, flags)

	rootCmd.AddCommand(
		newTrainCmd(),
		newStatusCmd(),
		newStopCmd(),
		newLogsCmd(),
		newJobsCmd(v),
		newRunsCmd(v),
		newDownloadCmd(),
		newModelsCmd(),
		newHealthCmd(v),
		newHashPasswordCmd(),
	)
	return rootCmd
}

// Execute runs the atx command tree.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	cmd.SetOut(os.Stdout)
	return cmd.ExecuteContext(ctx)
}

// bindFlags makes flags readable through v, with ATX_* environment
// variables taking over unset flags.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix("atx")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	lo.Must0(v.BindPFlags(flags))
}

func parseTask(arg string) (owner, task string, err error) {
	owner, task, err = domain.SplitTaskKey(arg)
	if err != nil {
		return "", "", fmt.Errorf("task must be <owner>/<task>: %w", err)
	}
	return owner, task, nil
}
