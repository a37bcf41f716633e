package interfaces

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrKeyGeneration is returned when a key pair cannot be produced or its output is unusable.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrMalformedPublicKey is returned when a public key lacks its PEM armor markers or body.
	ErrMalformedPublicKey = errors.New("malformed PEM public key")
)

// ProvisioningRequest identifies the credential set to (re)provision.
// Account and User are passed through verbatim; nil means absent.
type ProvisioningRequest struct {
	Namespace string
	Account   *string
	User      *string
}

// KeyPair holds one freshly generated RSA key pair.
type KeyPair struct {
	// PrivateKeyPem is the unencrypted PKCS#8 private key in PEM format.
	PrivateKeyPem string

	// PublicKeyArmored is the PKIX public key in PEM format, armor and line breaks included.
	PublicKeyArmored string
}

// KeyGenerator produces independent RSA key pairs.
type KeyGenerator interface {
	Generate() (*KeyPair, error)
}

// AggregateSecretRecord is the JSON document stored under the root secret name.
type AggregateSecretRecord struct {
	Account       *string `json:"account"`
	User          *string `json:"user"`
	RSAPublicKey1 string  `json:"rsa_public_key_1"`
	RSAPublicKey2 string  `json:"rsa_public_key_2"`
}

// ProvisioningResult names the secrets written by a successful provisioning run.
type ProvisioningResult struct {
	RootSecret        string
	PrivateKey1Secret string
	PrivateKey2Secret string

	// Store is the name of the secret store the secrets were written to.
	Store string
}

// Message returns the human readable confirmation for the caller.
func (r *ProvisioningResult) Message() string {
	return fmt.Sprintf("Root Secrets %s, RSA Private Key PEM 1 Branch Secrets %s, and RSA Private Key PEM 2 Branch Secrets %s written to %s",
		r.RootSecret, r.PrivateKey1Secret, r.PrivateKey2Secret, r.Store)
}

// Provisioner runs the key-pair provisioning workflow for one request.
type Provisioner interface {
	Provision(ctx context.Context, req *ProvisioningRequest) (*ProvisioningResult, error)
}
