package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lanternhq/lantern/internal/adapters/builder"
	"github.com/lanternhq/lantern/internal/adapters/docker"
	"github.com/lanternhq/lantern/internal/core/ports"
)

var (
	upName  string
	upImage string
	upRepo  string
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Build the workbench image and start a container",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bp, err := loadBlueprint(cfg)
		if err != nil {
			return err
		}

		runtime, err := docker.NewAdapter(cfg.Docker.StopTimeout)
		if err != nil {
			return err
		}

		name := upName
		if name == "" {
			name = "wb-" + uuid.NewString()[:8]
		}

		image := upImage
		if image == "" {
			imageBuilder, err := builder.NewAdapter()
			if err != nil {
				return err
			}
			image, err = imageBuilder.Build(cmd.Context(), bp, ports.BuildOptions{
				Tag:         fmt.Sprintf("lantern/%s:latest", name),
				SeedRepoURL: upRepo,
			})
			if err != nil {
				return err
			}
		} else {
			if err := runtime.Pull(cmd.Context(), image); err != nil {
				return err
			}
		}

		wb, err := runtime.Launch(cmd.Context(), image, bp, name)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\thttp://localhost:%d\n", wb.ID, wb.Name, wb.HostPort)
		return nil
	},
}

func init() {
	upCmd.Flags().StringVar(&upName, "name", "", "workbench name (generated when empty)")
	upCmd.Flags().StringVar(&upImage, "image", "", "launch a prebuilt image instead of building")
	upCmd.Flags().StringVar(&upRepo, "repo", "", "git repository to seed the workdir with")
	rootCmd.AddCommand(upCmd)
}
