package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ruteri/snowflake-keypair-provisioner/cryptoutils"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROVISIONER_SECRET_STORE.
const EnvPrefix = "PROVISIONER"

// Config holds the provisioner configuration.
type Config struct {
	// SecretStore is the store location URI, see package storage.
	SecretStore string `mapstructure:"secret_store"`
	KeyBits     int    `mapstructure:"key_bits"`
	ListenAddr  string `mapstructure:"listen_addr"`

	// VaultClientCert and VaultClientKey enable Vault TLS certificate login.
	VaultClientCert string `mapstructure:"vault_client_cert"`
	VaultClientKey  string `mapstructure:"vault_client_key"`

	LogJSON    bool   `mapstructure:"log_json"`
	LogDebug   bool   `mapstructure:"log_debug"`
	LogService string `mapstructure:"log_service"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SecretStore: "secretsmanager://",
		KeyBits:     cryptoutils.DefaultRSAKeyBits,
		ListenAddr:  "127.0.0.1:8080",
		LogService:  "snowflake-provisioner",
	}
}

// LoadConfig loads configuration from a YAML file and environment variables.
// An empty path looks for provisioner.yaml in the working directory; a missing
// default file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("provisioner")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("secret_store", defaults.SecretStore)
	v.SetDefault("key_bits", defaults.KeyBits)
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("vault_client_cert", defaults.VaultClientCert)
	v.SetDefault("vault_client_key", defaults.VaultClientKey)
	v.SetDefault("log_json", defaults.LogJSON)
	v.SetDefault("log_debug", defaults.LogDebug)
	v.SetDefault("log_service", defaults.LogService)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// Validate checks that the configuration can be used to build a provisioner.
func (c *Config) Validate() error {
	if c.KeyBits < cryptoutils.DefaultRSAKeyBits {
		return fmt.Errorf("key_bits must be at least %d, got %d", cryptoutils.DefaultRSAKeyBits, c.KeyBits)
	}

	if _, err := interfaces.NewSecretStoreLocation(c.SecretStore); err != nil {
		return fmt.Errorf("secret_store: %w", err)
	}

	if (c.VaultClientCert == "") != (c.VaultClientKey == "") {
		return fmt.Errorf("vault_client_cert and vault_client_key must be set together")
	}

	return nil
}
