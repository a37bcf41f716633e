package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// VaultStore implements a secret store using the HashiCorp Vault KV v2 engine.
// Each secret lives at {mount}/data/{dataPath}/{name} with its value under the "value" key.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a new Vault secret store.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount that prefixes every secret name (may be empty)
//   - token: Vault token; if empty, VAULT_TOKEN or TLS certificate login is used
//   - clientCert: optional TLS client certificate, used for the cert auth method
//   - log: Structured logger for operational insights
func NewVaultStore(address, mountPath, dataPath, token string, clientCert *tls.Certificate, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address

	if clientCert != nil {
		config.HttpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{*clientCert},
				},
			},
			Timeout: 30 * time.Second,
		}
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if token != "" {
		client.SetToken(token)
	} else if clientCert != nil && client.Token() == "" {
		secret, err := client.Logical().Write("auth/cert/login", nil)
		if err != nil {
			return nil, fmt.Errorf("vault cert login failed: %w", err)
		}
		if secret == nil || secret.Auth == nil {
			return nil, fmt.Errorf("vault cert login returned no auth info")
		}
		client.SetToken(secret.Auth.ClientToken)
	}

	return NewVaultStoreWithClient(client, mountPath, dataPath, log), nil
}

// NewVaultStoreWithClient creates a store around an existing, authenticated client.
func NewVaultStoreWithClient(client *api.Client, mountPath, dataPath string, log *slog.Logger) *VaultStore {
	// Ensure paths are properly formatted
	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", strings.TrimPrefix(strings.TrimPrefix(client.Address(), "https://"), "http://"), mountPath, dataPath),
	}
}

// Fetch retrieves the current version of a secret.
// Returns ErrSecretNotFound if the secret doesn't exist or its current version is deleted.
func (s *VaultStore) Fetch(ctx context.Context, name string) (string, error) {
	start := time.Now()
	secretPath := s.secretPath(name)

	secret, err := s.client.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		s.log.Error("Failed to read from Vault",
			slog.String("path", secretPath),
			"err", err)
		return "", fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		s.log.Debug("Secret not found in Vault", slog.String("path", secretPath))
		return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	}

	// KV v2 returns "data": null for deleted or destroyed versions
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok || data == nil {
		s.log.Debug("Secret has no current version in Vault", slog.String("path", secretPath))
		return "", fmt.Errorf("%w: %s", interfaces.ErrSecretNotFound, name)
	}

	value, ok := data["value"].(string)
	if !ok {
		s.log.Error("Invalid value format in Vault data", slog.String("path", secretPath))
		return "", fmt.Errorf("invalid value format in Vault data at %s", secretPath)
	}

	s.log.Debug("Fetched secret from Vault",
		slog.String("path", secretPath),
		slog.Duration("duration", time.Since(start)))

	return value, nil
}

// Store writes a new version of a secret.
func (s *VaultStore) Store(ctx context.Context, name string, value string) error {
	start := time.Now()
	secretPath := s.secretPath(name)

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"value": value,
		},
	}

	_, err := s.client.Logical().WriteWithContext(ctx, secretPath, secretData)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}

	s.log.Debug("Stored secret in Vault",
		slog.String("path", secretPath),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Available checks if the Vault backend is accessible.
// It uses the health endpoint to verify that Vault is initialized and unsealed.
func (s *VaultStore) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := s.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		s.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		s.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this secret store.
func (s *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s-%s", s.mountPath, s.dataPath)
}

// LocationURI returns the URI that identifies this secret store.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

func (s *VaultStore) secretPath(name string) string {
	return fmt.Sprintf("%s/data/%s", s.mountPath, strings.TrimPrefix(path.Join(s.dataPath, name), "/"))
}
