// Package storage provides secret stores for provisioned key material.
//
// Every store implements interfaces.SecretStore: named, mutable string secrets that
// are read with Fetch and overwritten with Store. Stores never invent secrets on
// behalf of the caller; the provisioner requires each secret to already exist.
//
//   - SecretsManagerStore - AWS Secrets Manager, names used verbatim as SecretId
//   - VaultStore - HashiCorp Vault KV v2, value kept under the "value" key
//   - FileBackend - local directory tree, for development and tests
//
// # Store URI Format
//
// Stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - secretsmanager://us-east-1
//   - secretsmanager://?endpoint=http://localhost:4566
//   - vault://vault.example.com:8200/secret/snowflake
//   - file:///var/lib/snowflake-secrets
//
// An empty secretsmanager region defers to AWS_REGION and the shared AWS config.
// For vault, the first path segment is the KV v2 mount and the remainder prefixes
// every secret name; the token comes from the "token" parameter, VAULT_TOKEN, or a
// TLS client certificate login configured through SecretStoreFactory.WithTLSAuth.
//
// # Errors
//
// Missing secrets are reported as interfaces.ErrSecretNotFound. Any other failure to
// read or write is wrapped in interfaces.ErrBackendUnavailable.
package storage
