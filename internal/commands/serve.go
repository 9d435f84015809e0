package commands

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/davidmtz-dev/bancos-reader/internal/api"
	"github.com/davidmtz-dev/bancos-reader/internal/logger"
	"github.com/davidmtz-dev/bancos-reader/internal/parser"
)

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement conversion HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Server.Port
			}

			log := logger.New()
			handler := &api.Handler{
				Log: log,
				Defaults: parser.Defaults{
					Currency:      cfg.Defaults.Currency,
					ReferenceYear: cfg.Defaults.ReferenceYear,
				},
			}

			app := fiber.New(fiber.Config{
				BodyLimit:             32 << 20, // statement PDFs are small; 32MB is generous
				DisableStartupMessage: true,
			})
			handler.Register(app)

			log.Info().Int("port", port).Msg("listening")
			return app.Listen(fmt.Sprintf(":%d", port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")

	return cmd
}
