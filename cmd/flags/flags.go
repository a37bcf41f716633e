package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/snowflake-keypair-provisioner/api"
	"github.com/ruteri/snowflake-keypair-provisioner/common"
	"github.com/ruteri/snowflake-keypair-provisioner/config"
	"github.com/ruteri/snowflake-keypair-provisioner/cryptoutils"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/ruteri/snowflake-keypair-provisioner/provisioner"
	"github.com/ruteri/snowflake-keypair-provisioner/storage"
	"github.com/urfave/cli/v2"
)

// LoadConfig reads the configuration file and environment, then applies
// explicitly set command line flags on top.
func LoadConfig(cCtx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(cCtx.String(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	if cCtx.IsSet(SecretStoreFlag.Name) {
		cfg.SecretStore = cCtx.String(SecretStoreFlag.Name)
	}
	if cCtx.IsSet(KeyBitsFlag.Name) {
		cfg.KeyBits = cCtx.Int(KeyBitsFlag.Name)
	}
	if cCtx.IsSet(ListenAddrFlag.Name) {
		cfg.ListenAddr = cCtx.String(ListenAddrFlag.Name)
	}
	if cCtx.IsSet(LogJsonFlag.Name) {
		cfg.LogJSON = cCtx.Bool(LogJsonFlag.Name)
	}
	if cCtx.IsSet(LogDebugFlag.Name) {
		cfg.LogDebug = cCtx.Bool(LogDebugFlag.Name)
	}
	if cCtx.IsSet(LogServiceFlag.Name) {
		cfg.LogService = cCtx.String(LogServiceFlag.Name)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SetupLogger(cCtx *cli.Context, cfg *config.Config) (log *slog.Logger) {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cfg.LogDebug,
		JSON:    cfg.LogJSON,
		Service: cfg.LogService,
		Version: common.Version,
	})

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             60 * time.Second,
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to a YAML config file (default: ./provisioner.yaml if present)",
	EnvVars: []string{"PROVISIONER_CONFIG"},
}

var SecretStoreFlag = &cli.StringFlag{
	Name:  "secret-store",
	Value: "secretsmanager://",
	Usage: "secret store URI: secretsmanager://[region], vault://host[:port]/mount/path or file:///dir",
}

var KeyBitsFlag = &cli.IntFlag{
	Name:  "key-bits",
	Value: 2048,
	Usage: "RSA modulus size in bits",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "snowflake-provisioner",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var CommonFlags = []cli.Flag{
	ConfigFlag,
	SecretStoreFlag,
	KeyBitsFlag,
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
}

// BuildProvisioner opens the configured secret store and creates a provisioner over it.
func BuildProvisioner(cfg *config.Config, logger *slog.Logger) (interfaces.SecretStore, *provisioner.Provisioner, error) {
	store, err := storage.NewSecretStoreFactory(logger).StoreForConfig(cfg.SecretStore, cfg.VaultClientCert, cfg.VaultClientKey)
	if err != nil {
		return nil, nil, err
	}

	keygen := cryptoutils.NewRSAKeyGenerator(cfg.KeyBits)
	return store, provisioner.NewProvisioner(store, keygen, logger), nil
}
