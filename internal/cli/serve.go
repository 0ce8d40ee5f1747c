package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lanternhq/lantern/internal/adapters/builder"
	"github.com/lanternhq/lantern/internal/adapters/docker"
	"github.com/lanternhq/lantern/internal/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workbench management API",
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
		imageBuilder, err := builder.NewAdapter()
		if err != nil {
			return err
		}

		app := http.NewServer(runtime, imageBuilder, bp, cfg.Server.BaseDomain)

		log.Info().
			Str("listen", cfg.Server.Listen).
			Str("base_domain", cfg.Server.BaseDomain).
			Int("workbench_port", bp.Port).
			Msg("server starting")
		return app.Listen(cfg.Server.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
