package storage

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// SecretStoreFactory creates secret stores from location URIs.
type SecretStoreFactory struct {
	log         *slog.Logger
	tlsAuthCert func() (tls.Certificate, error)
}

// NewSecretStoreFactory creates a new factory instance that can create secret stores.
func NewSecretStoreFactory(logger *slog.Logger) *SecretStoreFactory {
	return &SecretStoreFactory{
		log: logger,
	}
}

// WithTLSAuth returns a factory that authenticates to Vault with the given client certificate.
func (sf *SecretStoreFactory) WithTLSAuth(getCert func() (tls.Certificate, error)) interfaces.SecretStoreFactory {
	return &SecretStoreFactory{
		log:         sf.log,
		tlsAuthCert: getCert,
	}
}

// StoreForConfig creates the store a provisioner configuration points at,
// with Vault certificate login when a client key pair is configured.
func (sf *SecretStoreFactory) StoreForConfig(uri, clientCertFile, clientKeyFile string) (interfaces.SecretStore, error) {
	location, err := interfaces.NewSecretStoreLocation(uri)
	if err != nil {
		return nil, err
	}

	var factory interfaces.SecretStoreFactory = sf
	if clientCertFile != "" {
		factory = sf.WithTLSAuth(func() (tls.Certificate, error) {
			return tls.LoadX509KeyPair(clientCertFile, clientKeyFile)
		})
	}
	return factory.SecretStoreFor(location)
}

// StoreFor parses a location URI and creates the matching secret store.
func (sf *SecretStoreFactory) StoreFor(uri string) (interfaces.SecretStore, error) {
	location, err := interfaces.NewSecretStoreLocation(uri)
	if err != nil {
		return nil, err
	}
	return sf.SecretStoreFor(location)
}

// SecretStoreFor creates a secret store from a location.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - secretsmanager:// - AWS Secrets Manager
//   - vault:// - HashiCorp Vault KV v2
//   - file:// - Local filesystem, for development
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *SecretStoreFactory) SecretStoreFor(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	switch {
	case location.IsSecretsManager():
		return sf.createSecretsManagerStore(location)
	case location.IsVault():
		return sf.createVaultStore(location)
	case location.IsFile():
		return sf.createFileStore(location)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// createSecretsManagerStore creates an AWS Secrets Manager store.
// URI format: secretsmanager://[ACCESS_KEY:SECRET_KEY@][region][?endpoint=http://localhost:4566]
// An empty region defers to AWS_REGION and the shared config files.
func (sf *SecretStoreFactory) createSecretsManagerStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating Secrets Manager store", slog.String("region", location.Host))

	var accessKey, secretKey string
	if location.Auth != "" {
		// Extract credentials from URI (less secure)
		accessKey, secretKey, _ = strings.Cut(location.Auth, ":")
		sf.log.Debug("Using embedded credentials for Secrets Manager")
	}

	return NewSecretsManagerStore(location.Host, location.GetParam("endpoint"), accessKey, secretKey, sf.log)
}

// createVaultStore creates a Vault KV v2 store.
// URI format: vault://host:port/mount/path/prefix[?insecure=true][&token=...]
// The first path segment is the mount, the rest prefixes every secret name.
// Without a token in the URI, VAULT_TOKEN or TLS certificate auth is used.
func (sf *SecretStoreFactory) createVaultStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating Vault store", slog.String("host", location.Host))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: vault URI requires a host", interfaces.ErrInvalidLocationURI)
	}

	mountPath, dataPath, _ := strings.Cut(strings.TrimPrefix(location.Path, "/"), "/")
	if mountPath == "" {
		mountPath = "secret"
	}

	scheme := "https"
	if location.GetParamBool("insecure") {
		scheme = "http"
	}
	address := fmt.Sprintf("%s://%s", scheme, location.Host)

	var clientCert *tls.Certificate
	if sf.tlsAuthCert != nil {
		cert, err := sf.tlsAuthCert()
		if err != nil {
			return nil, fmt.Errorf("failed to get TLS client certificate: %w", err)
		}
		clientCert = &cert
	}

	token := location.GetParam("token")
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}

	return NewVaultStore(address, mountPath, dataPath, token, clientCert, sf.log)
}

// createFileStore creates a file system secret store.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *SecretStoreFactory) createFileStore(location interfaces.SecretStoreLocation) (interfaces.SecretStore, error) {
	sf.log.Debug("Creating file store", slog.String("uri", location.String()))

	// Get the path, handling relative vs absolute paths
	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI %s", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileBackend(path, sf.log)
}
