package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/snowflake-keypair-provisioner/api/provisionhandler"
	"github.com/ruteri/snowflake-keypair-provisioner/cmd/flags"
	"github.com/ruteri/snowflake-keypair-provisioner/httpserver"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "httpserver",
		Usage: "Serve the Snowflake key-pair provisioning API",
		Flags: append(flags.CommonFlags, flags.ServerFlags...),
		Action: func(cCtx *cli.Context) error {
			cfg, err := flags.LoadConfig(cCtx)
			if err != nil {
				return err
			}
			logger := flags.SetupLogger(cCtx, cfg)

			store, p, err := flags.BuildProvisioner(cfg, logger)
			if err != nil {
				logger.Error("Failed to open secret store", "err", err)
				return err
			}
			logger.Info("Using secret store", "store", store.Name())

			handler := provisionhandler.NewHandler(p, logger)
			server := httpserver.New(flags.ConfigureServer(cCtx, logger, cfg.ListenAddr), store, handler)

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
