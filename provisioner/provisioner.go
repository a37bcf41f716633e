package provisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/snowflake-keypair-provisioner/cryptoutils"
	"github.com/ruteri/snowflake-keypair-provisioner/interfaces"
)

// Provisioner generates two RSA key pairs and writes them into pre-existing secrets.
//
// It is safe to reuse across invocations; it holds no per-invocation state.
// Runs are strictly sequential and stop at the first error without rolling back
// secrets that were already overwritten.
type Provisioner struct {
	store  interfaces.SecretStore
	keygen interfaces.KeyGenerator
	log    *slog.Logger
}

// NewProvisioner creates a provisioner writing to store with key pairs from keygen.
func NewProvisioner(store interfaces.SecretStore, keygen interfaces.KeyGenerator, log *slog.Logger) *Provisioner {
	return &Provisioner{
		store:  store,
		keygen: keygen,
		log:    log,
	}
}

// secretWrite is one existence check and overwrite.
type secretWrite struct {
	name  string
	value string
}

// Provision runs the workflow for req:
//  1. generate key pairs #1 and #2
//  2. normalize both public keys and build the aggregate record
//  3. for the root, private key 1 and private key 2 secrets, in that order,
//     verify the secret exists and overwrite it
//
// Key generation errors wrap interfaces.ErrKeyGeneration. Store errors keep the
// store's sentinel (interfaces.ErrSecretNotFound or interfaces.ErrBackendUnavailable).
func (p *Provisioner) Provision(ctx context.Context, req *interfaces.ProvisioningRequest) (*interfaces.ProvisioningResult, error) {
	start := time.Now()
	names := SecretNamesFor(req.Namespace)
	log := p.log.With(
		slog.String("invocation", uuid.NewString()),
		slog.String("root_secret", names.Root))

	log.Info("Provisioning key pairs", slog.String("store", p.store.Name()))

	keyPair1, publicKey1, err := p.generateKeyPair(log, 1)
	if err != nil {
		return nil, err
	}

	keyPair2, publicKey2, err := p.generateKeyPair(log, 2)
	if err != nil {
		return nil, err
	}

	if keyPair1.PrivateKeyPem == keyPair2.PrivateKeyPem || publicKey1 == publicKey2 {
		return nil, fmt.Errorf("%w: generated key pairs are identical", interfaces.ErrKeyGeneration)
	}

	record, err := json.Marshal(interfaces.AggregateSecretRecord{
		Account:       req.Account,
		User:          req.User,
		RSAPublicKey1: publicKey1,
		RSAPublicKey2: publicKey2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode root secret: %w", err)
	}

	writes := []secretWrite{
		{name: names.Root, value: string(record)},
		{name: names.PrivateKey1, value: keyPair1.PrivateKeyPem},
		{name: names.PrivateKey2, value: keyPair2.PrivateKeyPem},
	}
	for _, w := range writes {
		if err := p.replaceSecret(ctx, log, w); err != nil {
			return nil, err
		}
	}

	log.Info("Provisioning complete", slog.Duration("duration", time.Since(start)))

	return &interfaces.ProvisioningResult{
		RootSecret:        names.Root,
		PrivateKey1Secret: names.PrivateKey1,
		PrivateKey2Secret: names.PrivateKey2,
		Store:             p.store.Name(),
	}, nil
}

// generateKeyPair returns a key pair and its normalized public key.
func (p *Provisioner) generateKeyPair(log *slog.Logger, index int) (*interfaces.KeyPair, string, error) {
	keyPair, err := p.keygen.Generate()
	if err != nil {
		log.Error("Key generation failed", slog.Int("key", index), "err", err)
		return nil, "", fmt.Errorf("key pair %d: %w", index, err)
	}

	publicKey := cryptoutils.PublicKeyPEM(keyPair.PublicKeyArmored)

	normalized, err := publicKey.Normalized()
	if err != nil {
		return nil, "", fmt.Errorf("%w: key pair %d: %w", interfaces.ErrKeyGeneration, index, err)
	}

	fingerprint, err := publicKey.Fingerprint()
	if err != nil {
		return nil, "", fmt.Errorf("%w: key pair %d: %v", interfaces.ErrKeyGeneration, index, err)
	}

	log.Info("Generated key pair",
		slog.Int("key", index),
		slog.String("fingerprint", fingerprint))

	return keyPair, normalized, nil
}

// replaceSecret overwrites a secret that must already exist.
// The fetched value is discarded; the read only gates the write.
func (p *Provisioner) replaceSecret(ctx context.Context, log *slog.Logger, w secretWrite) error {
	if _, err := p.store.Fetch(ctx, w.name); err != nil {
		log.Error("Secret existence check failed", slog.String("secret", w.name), "err", err)
		return fmt.Errorf("secret %s must exist before provisioning: %w", w.name, err)
	}

	if err := p.store.Store(ctx, w.name, w.value); err != nil {
		log.Error("Failed to update secret", slog.String("secret", w.name), "err", err)
		return fmt.Errorf("failed to update secret %s: %w", w.name, err)
	}

	log.Info("Updated secret", slog.String("secret", w.name))
	return nil
}
