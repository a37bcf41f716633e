package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/snowflake-keypair-provisioner/api"
	"github.com/ruteri/snowflake-keypair-provisioner/api/clients"
	"github.com/ruteri/snowflake-keypair-provisioner/cmd/flags"
	"github.com/urfave/cli/v2"
)

var eventFlag = &cli.StringFlag{
	Name:  "event",
	Usage: "read the provisioning event from a JSON file ('-' for stdin); other event flags override its fields",
}

var secretInsertFlag = &cli.StringFlag{
	Name:  "secret-insert",
	Usage: "namespace segment inserted into the secret names",
}

var accountFlag = &cli.StringFlag{
	Name:  "account",
	Usage: "Snowflake account identifier recorded in the root secret",
}

var userFlag = &cli.StringFlag{
	Name:  "user",
	Usage: "Snowflake user recorded in the root secret",
}

var serverAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Usage: "provision through a remote provisioning server instead of the local secret store",
}

func readEvent(cCtx *cli.Context) (*api.ProvisionEvent, error) {
	event := &api.ProvisionEvent{}

	if source := cCtx.String(eventFlag.Name); source != "" {
		var r io.Reader = os.Stdin
		if source != "-" {
			f, err := os.Open(source)
			if err != nil {
				return nil, fmt.Errorf("could not open event file: %w", err)
			}
			defer f.Close()
			r = f
		}
		if err := json.NewDecoder(r).Decode(event); err != nil {
			return nil, fmt.Errorf("could not parse event: %w", err)
		}
	}

	if cCtx.IsSet(secretInsertFlag.Name) {
		event.SecretInsert = cCtx.String(secretInsertFlag.Name)
	}
	if cCtx.IsSet(accountFlag.Name) {
		account := cCtx.String(accountFlag.Name)
		event.Account = &account
	}
	if cCtx.IsSet(userFlag.Name) {
		user := cCtx.String(userFlag.Name)
		event.User = &user
	}
	return event, nil
}

func main() {
	app := &cli.App{
		Name:  "provision",
		Usage: "Generate two RSA key pairs for a Snowflake user and write them to the secret store",
		Flags: append([]cli.Flag{
			eventFlag,
			secretInsertFlag,
			accountFlag,
			userFlag,
			serverAddrFlag,
		}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			cfg, err := flags.LoadConfig(cCtx)
			if err != nil {
				return err
			}
			logger := flags.SetupLogger(cCtx, cfg)

			event, err := readEvent(cCtx)
			if err != nil {
				logger.Error("Invalid provisioning event", "err", err)
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var response *api.ProvisionResponse
			if serverAddr := cCtx.String(serverAddrFlag.Name); serverAddr != "" {
				logger.Info("Provisioning through remote server", "server", serverAddr)
				response, err = clients.NewProvisioningClient(serverAddr).Provision(ctx, event)
				if err != nil {
					logger.Error("Remote provisioning failed", "err", err)
					return err
				}
			} else {
				_, p, err := flags.BuildProvisioner(cfg, logger)
				if err != nil {
					logger.Error("Failed to open secret store", "err", err)
					return err
				}

				result, err := p.Provision(ctx, event.Request())
				if err != nil {
					return err
				}

				response, err = api.NewProvisionResponse(result)
				if err != nil {
					return err
				}
			}

			return json.NewEncoder(os.Stdout).Encode(response)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
