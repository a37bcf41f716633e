package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/ruteri/snowflake-keypair-provisioner/api"
	"github.com/ruteri/snowflake-keypair-provisioner/common"
	"github.com/ruteri/snowflake-keypair-provisioner/config"
	"github.com/ruteri/snowflake-keypair-provisioner/cryptoutils"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/ruteri/snowflake-keypair-provisioner/provisioner"
	"github.com/ruteri/snowflake-keypair-provisioner/storage"
)

type handler struct {
	provisioner interfaces.Provisioner
}

func (h *handler) handle(ctx context.Context, event api.ProvisionEvent) (*api.ProvisionResponse, error) {
	result, err := h.provisioner.Provision(ctx, event.Request())
	if err != nil {
		return nil, err
	}
	return api.NewProvisionResponse(result)
}

func main() {
	cfg, err := config.LoadConfig(os.Getenv("PROVISIONER_CONFIG"))
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	// Lambda collects stdout, so log JSON unless configured otherwise
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cfg.LogDebug,
		JSON:    true,
		Service: cfg.LogService,
		Version: common.Version,
	})

	store, err := storage.NewSecretStoreFactory(logger).StoreForConfig(cfg.SecretStore, cfg.VaultClientCert, cfg.VaultClientKey)
	if err != nil {
		logger.Error("Failed to open secret store", "err", err)
		os.Exit(1)
	}
	logger.Info("Using secret store", "store", store.Name())

	h := &handler{
		provisioner: provisioner.NewProvisioner(store, cryptoutils.NewRSAKeyGenerator(cfg.KeyBits), logger),
	}
	lambda.Start(h.handle)
}
