package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ehsaniara/annotrain/internal/trainer/auth"
	"github.com/ehsaniara/annotrain/internal/trainer/health"
)

func newHealthCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Long: `Check that the server is up.

By default the HTTP /health endpoint is queried. With --grpc the gRPC health
service is asked instead, which is what orchestration probes use.`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			if lo.Must(cmd.Flags().GetBool("grpc")) {
				status, err := health.Check(ctx, v.GetString(flagHealthRemote), health.ServiceName)
				if err != nil {
					return err
				}
				if status != healthpb.HealthCheckResponse_SERVING {
					return fmt.Errorf("server is %s", status)
				}
				cmd.Println(color.HiGreenString(status.String()))
				return nil
			}

			h, err := apiClient.Health(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("%s  queue length %d\n", color.HiGreenString(h.Status), h.QueueLength)
			return nil
		},
	}
	cmd.Flags().Bool("grpc", false, "use the gRPC health service")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for the auth.users section of the server config",
		Long: `Print a bcrypt hash for the auth.users section of the server config.

The password is read from the terminal without echo, or from the first line
of stdin when it is not a terminal.`,
		Args: cobra.NoArgs,

		// Works offline.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },

		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("empty password")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			cmd.Println(hash)
			return nil
		},
	}
}

func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cmd.PrintErr("Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		cmd.PrintErrln()
		return string(raw), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
