package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lanternhq/lantern/internal/adapters/docker"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List workbenches",
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime, err := runtimeFromConfig()
		if err != nil {
			return err
		}

		workbenches, err := runtime.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tIMAGE\tSTATE\tHOST PORT")
		for _, wb := range workbenches {
			hostPort := "-"
			if wb.HostPort != 0 {
				hostPort = fmt.Sprintf("%d", wb.HostPort)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wb.ID, wb.Name, wb.Image, wb.State, hostPort)
		}
		return w.Flush()
	},
}

var downCmd = &cobra.Command{
	Use:   "down <id>",
	Short: "Stop and remove a workbench",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime, err := runtimeFromConfig()
		if err != nil {
			return err
		}

		if err := runtime.Stop(cmd.Context(), args[0]); err != nil {
			return err
		}
		return runtime.Remove(cmd.Context(), args[0])
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs <id>",
	Short: "Print workbench server logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime, err := runtimeFromConfig()
		if err != nil {
			return err
		}

		logs, err := runtime.Logs(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer logs.Close()

		_, err = io.Copy(os.Stdout, logs)
		return err
	},
}

func runtimeFromConfig() (*docker.Adapter, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return docker.NewAdapter(cfg.Docker.StopTimeout)
}

func init() {
	rootCmd.AddCommand(lsCmd, downCmd, logsCmd)
}
