package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lanternhq/lantern/internal/blueprint"
)

var renderWorkspace bool

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the Dockerfile for the effective blueprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		bp, err := loadBlueprint(cfg)
		if err != nil {
			return err
		}

		render := blueprint.Render
		if renderWorkspace {
			render = blueprint.RenderWorkspace
		}
		dockerfile, err := render(bp)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), dockerfile)
		return nil
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderWorkspace, "workspace", false, "include the COPY of a seeded workspace")
	rootCmd.AddCommand(renderCmd)
}
