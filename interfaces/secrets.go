package interfaces

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrSecretNotFound is returned when no secret exists under the requested name.
	// Secrets are never created by the provisioner, so this also fails writes to missing secrets.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrBackendUnavailable is returned when a secret store rejects a read or write.
	// This could be due to permissions, throttling, or transient service faults.
	ErrBackendUnavailable = errors.New("secret store unavailable")

	// ErrInvalidLocationURI is returned when a secret store URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid secret store location URI")
)

// SecretStore provides named, mutable secret strings.
type SecretStore interface {
	// Fetch returns the current value of the named secret.
	// Returns ErrSecretNotFound if the secret does not exist.
	Fetch(ctx context.Context, name string) (string, error)

	// Store overwrites the current value of the named secret.
	Store(ctx context.Context, name string, value string) error

	// Available checks if the store is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

// SecretStoreFactory creates secret stores.
type SecretStoreFactory interface {
	// SecretStoreFor creates a store from its location.
	// Supports secretsmanager://, vault://, file://
	SecretStoreFor(location SecretStoreLocation) (SecretStore, error)

	// WithTLSAuth configures TLS client authentication for stores that support it.
	WithTLSAuth(func() (tls.Certificate, error)) SecretStoreFactory
}

// SecretStoreLocation represents URI for a secret store.
type SecretStoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname, or region for secretsmanager
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewSecretStoreLocation creates a new store location from a URI string with validation.
func NewSecretStoreLocation(uri string) (SecretStoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return SecretStoreLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "secretsmanager", "vault", "file":
		// Valid scheme
	default:
		return SecretStoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return SecretStoreLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc SecretStoreLocation) String() string {
	return loc.Raw
}

// IsSecretsManager checks if this is an AWS Secrets Manager location.
func (loc SecretStoreLocation) IsSecretsManager() bool {
	return loc.Scheme == "secretsmanager"
}

// IsVault checks if this is a Vault location.
func (loc SecretStoreLocation) IsVault() bool {
	return loc.Scheme == "vault"
}

// IsFile checks if this is a file system location.
func (loc SecretStoreLocation) IsFile() bool {
	return loc.Scheme == "file"
}

// GetParam returns a query parameter value.
func (loc SecretStoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc SecretStoreLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}
